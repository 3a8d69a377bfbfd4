package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/statediff"
	"github.com/lunchact/Waves/wire"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func testAddress(fill byte) crypto.Address {
	var addr crypto.Address
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func testBlock(parent crypto.Hash, timestamp int64) *wire.Block {
	return &wire.Block{
		Header: wire.BlockHeader{
			Version:   1,
			ParentID:  parent,
			Timestamp: timestamp,
		},
	}
}

func TestAppendAdvancesHeightAndStoresBlocks(t *testing.T) {
	store := openTestStore(t)

	height, err := store.Height()
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)

	alice := testAddress(1)
	diff := statediff.New()
	require.NoError(t, diff.AddBalance(alice, 1000))

	block := testBlock(crypto.Hash{}, 100)
	require.NoError(t, store.Append(diff, block))

	height, err = store.Height()
	require.NoError(t, err)
	require.Equal(t, uint64(1), height)

	portfolio, err := store.Portfolio(alice)
	require.NoError(t, err)
	require.Equal(t, int64(1000), portfolio.Balance)

	stored, err := store.Block(block.ID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, block.ID(), stored.ID())

	byHeight, err := store.BlockAtHeight(1)
	require.NoError(t, err)
	require.NotNil(t, byHeight)
	require.Equal(t, block.ID(), byHeight.ID())

	missing, err := store.BlockAtHeight(2)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAppendFoldsPortfolioDeltas(t *testing.T) {
	store := openTestStore(t)
	alice := testAddress(1)
	bob := testAddress(2)
	asset := crypto.HashData([]byte("asset"))

	first := statediff.New()
	require.NoError(t, first.AddBalance(alice, 1000))
	require.NoError(t, first.AddAssetBalance(alice, asset, 50))
	require.NoError(t, store.Append(first, testBlock(crypto.Hash{}, 1)))

	second := statediff.New()
	require.NoError(t, second.AddBalance(alice, -300))
	require.NoError(t, second.AddBalance(bob, 300))
	require.NoError(t, second.AddLease(alice, bob, 100))
	require.NoError(t, store.Append(second, testBlock(crypto.Hash{}, 2)))

	alicePortfolio, err := store.Portfolio(alice)
	require.NoError(t, err)
	require.Equal(t, int64(700), alicePortfolio.Balance)
	require.Equal(t, int64(100), alicePortfolio.LeaseOut)
	require.Equal(t, int64(600), alicePortfolio.SpendableBalance())
	require.Equal(t, int64(50), alicePortfolio.AssetBalance(asset))

	bobPortfolio, err := store.Portfolio(bob)
	require.NoError(t, err)
	require.Equal(t, int64(300), bobPortfolio.Balance)
	require.Equal(t, int64(100), bobPortfolio.LeaseIn)
}

func TestAppendRejectsNetNegativeBalance(t *testing.T) {
	store := openTestStore(t)
	alice := testAddress(1)

	diff := statediff.New()
	require.NoError(t, diff.AddBalance(alice, -1))
	require.Error(t, store.Append(diff, testBlock(crypto.Hash{}, 1)))

	// The failed commit must not have touched anything.
	height, err := store.Height()
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)
	portfolio, err := store.Portfolio(alice)
	require.NoError(t, err)
	require.Equal(t, int64(0), portfolio.Balance)
}

func TestAssetLifecyclePersists(t *testing.T) {
	store := openTestStore(t)
	issuer := crypto.PublicKey{1}
	asset := crypto.HashData([]byte("asset id"))

	issue := statediff.New()
	issue.IssuedAssets[asset] = statediff.AssetInfo{
		Issuer:      issuer,
		Name:        []byte("token"),
		Description: []byte("a token"),
		Decimals:    2,
	}
	issue.AssetVolumes[asset] = statediff.AssetVolumeChange{Delta: 1000, Reissuable: true}
	require.NoError(t, store.Append(issue, testBlock(crypto.Hash{}, 1)))

	desc, err := store.AssetDescription(asset)
	require.NoError(t, err)
	require.NotNil(t, desc)
	require.Equal(t, issuer, desc.Issuer)
	require.Equal(t, []byte("token"), desc.Name)
	require.Equal(t, int64(1000), desc.TotalQuantity)
	require.True(t, desc.Reissuable)

	reissue := statediff.New()
	reissue.AssetVolumes[asset] = statediff.AssetVolumeChange{Delta: 500, Reissuable: false}
	require.NoError(t, store.Append(reissue, testBlock(crypto.Hash{}, 2)))

	desc, err = store.AssetDescription(asset)
	require.NoError(t, err)
	require.Equal(t, int64(1500), desc.TotalQuantity)
	require.False(t, desc.Reissuable)

	unknown, err := store.AssetDescription(crypto.HashData([]byte("other")))
	require.NoError(t, err)
	require.Nil(t, unknown)
}

func TestAccountAndAssetScripts(t *testing.T) {
	store := openTestStore(t)
	alice := testAddress(1)

	got, err := store.AccountScript(alice)
	require.NoError(t, err)
	require.Nil(t, got)

	scr := script.New([]byte{script.OpTrue})
	require.NoError(t, store.SetAccountScript(alice, scr))
	got, err = store.AccountScript(alice)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, scr.Code, got.Code)

	require.NoError(t, store.SetAccountScript(alice, nil))
	got, err = store.AccountScript(alice)
	require.NoError(t, err)
	require.Nil(t, got)

	// Asset scripts require the asset to exist.
	asset := crypto.HashData([]byte("asset"))
	require.Error(t, store.SetAssetScript(asset, scr))

	issue := statediff.New()
	issue.IssuedAssets[asset] = statediff.AssetInfo{Name: []byte("t")}
	issue.AssetVolumes[asset] = statediff.AssetVolumeChange{Delta: 1, Reissuable: true}
	require.NoError(t, store.Append(issue, testBlock(crypto.Hash{}, 1)))
	require.NoError(t, store.SetAssetScript(asset, scr))

	desc, err := store.AssetDescription(asset)
	require.NoError(t, err)
	require.NotNil(t, desc.Script)
	require.Equal(t, scr.Code, desc.Script.Code)
}

func TestOrderFillsAccumulateAcrossBlocks(t *testing.T) {
	store := openTestStore(t)
	orderID := crypto.HashData([]byte("order"))

	first := statediff.New()
	first.OrderFills[orderID] = statediff.OrderFill{VolumeExecuted: 100, FeePaid: 3}
	require.NoError(t, store.Append(first, testBlock(crypto.Hash{}, 1)))

	second := statediff.New()
	second.OrderFills[orderID] = statediff.OrderFill{VolumeExecuted: 50, FeePaid: 2}
	require.NoError(t, store.Append(second, testBlock(crypto.Hash{}, 2)))

	fill, err := store.OrderFill(orderID)
	require.NoError(t, err)
	require.Equal(t, statediff.OrderFill{VolumeExecuted: 150, FeePaid: 5}, fill)
}

func TestLeaseRecords(t *testing.T) {
	store := openTestStore(t)
	leaseID := crypto.HashData([]byte("lease"))
	alice := testAddress(1)
	bob := testAddress(2)

	diff := statediff.New()
	diff.Leases[leaseID] = statediff.LeaseChange{
		Active: true, Sender: alice, Recipient: bob, Amount: 500,
	}
	require.NoError(t, store.Append(diff, testBlock(crypto.Hash{}, 1)))

	lease, err := store.LeaseDetails(leaseID)
	require.NoError(t, err)
	require.NotNil(t, lease)
	require.True(t, lease.Active)
	require.Equal(t, alice, lease.Sender)
	require.Equal(t, int64(500), lease.Amount)
}

func TestFeatureActivationRecords(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.FeatureActivationHeight(chainconfig.FeatureNG)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.RecordFeatureActivation(chainconfig.FeatureNG, 42))
	height, ok, err := store.FeatureActivationHeight(chainconfig.FeatureNG)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), height)
}

func TestSnapshotIsolation(t *testing.T) {
	store := openTestStore(t)
	alice := testAddress(1)

	first := statediff.New()
	require.NoError(t, first.AddBalance(alice, 100))
	require.NoError(t, store.Append(first, testBlock(crypto.Hash{}, 1)))

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	defer snapshot.Release()

	second := statediff.New()
	require.NoError(t, second.AddBalance(alice, 900))
	require.NoError(t, store.Append(second, testBlock(crypto.Hash{}, 2)))

	// The snapshot still sees the pre-append state.
	snapHeight, err := snapshot.Height()
	require.NoError(t, err)
	require.Equal(t, uint64(1), snapHeight)
	snapPortfolio, err := snapshot.Portfolio(alice)
	require.NoError(t, err)
	require.Equal(t, int64(100), snapPortfolio.Balance)

	liveHeight, err := store.Height()
	require.NoError(t, err)
	require.Equal(t, uint64(2), liveHeight)
}
