package state

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/statediff"
	"github.com/lunchact/Waves/wire"
)

// Store is chain state persisted in leveldb. It implements Reader against
// the live database; Snapshot returns a Reader frozen at a point in time.
//
// Append is the only mutating entry point used during normal operation and
// commits a whole block diff in a single write batch, so a partially
// applied block is never visible.
type Store struct {
	ldb *leveldb.DB
}

// Open opens the store at the given path, creating it if needed. A
// corrupted database is recovered before giving up.
func Open(path string) (*Store, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if _, corrupted := err.(*ldbErrors.ErrCorrupted); corrupted {
		log.Warnf("LevelDB corruption detected for path %s: %s", path, err)
		ldb, err = leveldb.RecoverFile(path, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to recover leveldb at %s", path)
		}
		log.Warnf("LevelDB recovered from corruption for path %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open leveldb at %s", path)
	}
	return &Store{ldb: ldb}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return errors.WithStack(s.ldb.Close())
}

func (s *Store) get(key []byte) ([]byte, error) {
	data, err := s.ldb.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Height returns the current chain height.
func (s *Store) Height() (uint64, error) {
	return readHeight(s.get)
}

// Portfolio returns the absolute holdings of the given account.
func (s *Store) Portfolio(addr crypto.Address) (statediff.Portfolio, error) {
	return readPortfolio(s.get, addr)
}

// AccountScript returns the script attached to the account, or nil.
func (s *Store) AccountScript(addr crypto.Address) (*script.Script, error) {
	return readAccountScript(s.get, addr)
}

// AssetDescription returns the description of the asset, or nil.
func (s *Store) AssetDescription(asset crypto.Hash) (*AssetDescription, error) {
	return readAssetDescription(s.get, asset)
}

// LeaseDetails returns the recorded lease, or nil.
func (s *Store) LeaseDetails(leaseID crypto.Hash) (*LeaseDetails, error) {
	return readLeaseDetails(s.get, leaseID)
}

// FeatureActivationHeight returns the recorded activation height of the
// feature, if any.
func (s *Store) FeatureActivationHeight(id chainconfig.FeatureID) (uint64, bool, error) {
	return readFeatureActivationHeight(s.get, id)
}

// Block returns the stored block with the given id, or nil if unknown.
func (s *Store) Block(id crypto.Hash) (*wire.Block, error) {
	data, err := s.get(blockKey(id))
	if err != nil || data == nil {
		return nil, err
	}
	block, err := wire.DeserializeBlock(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to deserialize stored block %s", id)
	}
	return block, nil
}

// BlockAtHeight returns the stored block appended at the given height
// (1-based), or nil if the chain is shorter.
func (s *Store) BlockAtHeight(height uint64) (*wire.Block, error) {
	data, err := s.get(blockAtHeightKey(height))
	if err != nil || data == nil {
		return nil, err
	}
	id, err := crypto.NewHashFromBytes(data)
	if err != nil {
		return nil, err
	}
	return s.Block(id)
}

// SetAccountScript attaches a script to an account, or detaches it when
// scr is nil. Used by bootstrap and tests; script-setting transactions are
// outside this core.
func (s *Store) SetAccountScript(addr crypto.Address, scr *script.Script) error {
	if scr == nil {
		return errors.WithStack(s.ldb.Delete(accountScriptKey(addr), nil))
	}
	return errors.WithStack(s.ldb.Put(accountScriptKey(addr), scr.Code, nil))
}

// SetAssetScript attaches a script to an existing asset, or detaches it
// when scr is nil.
func (s *Store) SetAssetScript(asset crypto.Hash, scr *script.Script) error {
	desc, err := s.AssetDescription(asset)
	if err != nil {
		return err
	}
	if desc == nil {
		return errors.Errorf("unknown asset %s", asset)
	}
	desc.Script = scr
	return errors.WithStack(s.ldb.Put(assetKey(asset), serializeAssetDescription(desc), nil))
}

// RecordFeatureActivation records that a feature activated at the given
// height. The voting mechanics that decide this are outside this core.
func (s *Store) RecordFeatureActivation(id chainconfig.FeatureID, height uint64) error {
	return errors.WithStack(s.ldb.Put(featureKey(id), serializeUint64(height), nil))
}

// Append atomically commits a validated block diff: portfolio deltas are
// folded into stored portfolios, auxiliary records are written, the block
// is stored and the height advances by one. The whole commit is a single
// leveldb batch.
func (s *Store) Append(diff *statediff.Diff, block *wire.Block) error {
	batch := new(leveldb.Batch)

	for addr, delta := range diff.Portfolios {
		portfolio, err := s.Portfolio(addr)
		if err != nil {
			return err
		}
		updated, err := combinePortfolios(portfolio, delta)
		if err != nil {
			return errors.Wrapf(err, "failed to update portfolio of %s", addr)
		}
		batch.Put(portfolioKey(addr), serializePortfolio(updated))
	}

	for id, meta := range diff.Transactions {
		batch.Put(txMetaKey(id), serializeTxMeta(meta))
	}

	for id, fill := range diff.OrderFills {
		existing, err := s.OrderFill(id)
		if err != nil {
			return err
		}
		existing.VolumeExecuted += fill.VolumeExecuted
		existing.FeePaid += fill.FeePaid
		batch.Put(orderFillKey(id), serializeOrderFill(existing))
	}

	for id, info := range diff.IssuedAssets {
		desc := &AssetDescription{
			Issuer:      info.Issuer,
			Name:        info.Name,
			Description: info.Description,
			Decimals:    info.Decimals,
			Reissuable:  true,
		}
		if change, ok := diff.AssetVolumes[id]; ok {
			desc.TotalQuantity = change.Delta
			desc.Reissuable = change.Reissuable
		}
		batch.Put(assetKey(id), serializeAssetDescription(desc))
	}

	for id, change := range diff.AssetVolumes {
		if _, issuedNow := diff.IssuedAssets[id]; issuedNow {
			continue
		}
		desc, err := s.AssetDescription(id)
		if err != nil {
			return err
		}
		if desc == nil {
			return errors.Errorf("volume change for unknown asset %s", id)
		}
		desc.TotalQuantity += change.Delta
		desc.Reissuable = desc.Reissuable && change.Reissuable
		batch.Put(assetKey(id), serializeAssetDescription(desc))
	}

	for id, change := range diff.Leases {
		batch.Put(leaseKey(id), serializeLeaseDetails(&LeaseDetails{
			Active:    change.Active,
			Sender:    change.Sender,
			Recipient: change.Recipient,
			Amount:    change.Amount,
		}))
	}

	height, err := s.Height()
	if err != nil {
		return err
	}
	newHeight := height + 1
	blockID := block.ID()
	blockBuf := &bytes.Buffer{}
	if err := block.Serialize(blockBuf); err != nil {
		return errors.Wrapf(err, "failed to serialize block %s", blockID)
	}
	batch.Put(blockKey(blockID), blockBuf.Bytes())
	batch.Put(blockAtHeightKey(newHeight), blockID[:])
	batch.Put(heightKey(), serializeUint64(newHeight))

	if err := s.ldb.Write(batch, nil); err != nil {
		return errors.Wrapf(err, "failed to commit block %s", blockID)
	}
	log.Debugf("Appended block %s at height %d (%d transactions)",
		blockID, newHeight, len(block.Transactions))
	return nil
}

// OrderFill returns the cumulative recorded fill of the given order. An
// unknown order has a zero fill.
func (s *Store) OrderFill(id crypto.Hash) (statediff.OrderFill, error) {
	data, err := s.get(orderFillKey(id))
	if err != nil || data == nil {
		return statediff.OrderFill{}, err
	}
	return deserializeOrderFill(data)
}

// Snapshot returns a Reader frozen at the current state. The caller must
// Release it when done.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap, err := s.ldb.GetSnapshot()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Snapshot{snap: snap}, nil
}

// Snapshot is a consistent, immutable view of chain state. It implements
// Reader.
type Snapshot struct {
	snap *leveldb.Snapshot
}

func (s *Snapshot) get(key []byte) ([]byte, error) {
	data, err := s.snap.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Height returns the chain height at snapshot time.
func (s *Snapshot) Height() (uint64, error) {
	return readHeight(s.get)
}

// Portfolio returns the holdings of the account at snapshot time.
func (s *Snapshot) Portfolio(addr crypto.Address) (statediff.Portfolio, error) {
	return readPortfolio(s.get, addr)
}

// AccountScript returns the account's script at snapshot time, or nil.
func (s *Snapshot) AccountScript(addr crypto.Address) (*script.Script, error) {
	return readAccountScript(s.get, addr)
}

// AssetDescription returns the asset's description at snapshot time, or nil.
func (s *Snapshot) AssetDescription(asset crypto.Hash) (*AssetDescription, error) {
	return readAssetDescription(s.get, asset)
}

// LeaseDetails returns the lease at snapshot time, or nil.
func (s *Snapshot) LeaseDetails(leaseID crypto.Hash) (*LeaseDetails, error) {
	return readLeaseDetails(s.get, leaseID)
}

// FeatureActivationHeight returns the feature's activation height at
// snapshot time, if any.
func (s *Snapshot) FeatureActivationHeight(id chainconfig.FeatureID) (uint64, bool, error) {
	return readFeatureActivationHeight(s.get, id)
}

// OrderFill returns the cumulative recorded fill of the order at snapshot
// time.
func (s *Snapshot) OrderFill(id crypto.Hash) (statediff.OrderFill, error) {
	data, err := s.get(orderFillKey(id))
	if err != nil || data == nil {
		return statediff.OrderFill{}, err
	}
	return deserializeOrderFill(data)
}

// Release frees the snapshot.
func (s *Snapshot) Release() {
	s.snap.Release()
}

type getFunc func(key []byte) ([]byte, error)

func readHeight(get getFunc) (uint64, error) {
	data, err := get(heightKey())
	if err != nil || data == nil {
		return 0, err
	}
	return deserializeUint64(data)
}

func readPortfolio(get getFunc, addr crypto.Address) (statediff.Portfolio, error) {
	data, err := get(portfolioKey(addr))
	if err != nil || data == nil {
		return statediff.Portfolio{}, err
	}
	return deserializePortfolio(data)
}

func readAccountScript(get getFunc, addr crypto.Address) (*script.Script, error) {
	data, err := get(accountScriptKey(addr))
	if err != nil || data == nil {
		return nil, err
	}
	return script.New(data), nil
}

func readAssetDescription(get getFunc, asset crypto.Hash) (*AssetDescription, error) {
	data, err := get(assetKey(asset))
	if err != nil || data == nil {
		return nil, err
	}
	return deserializeAssetDescription(data)
}

func readLeaseDetails(get getFunc, leaseID crypto.Hash) (*LeaseDetails, error) {
	data, err := get(leaseKey(leaseID))
	if err != nil || data == nil {
		return nil, err
	}
	return deserializeLeaseDetails(data)
}

func readFeatureActivationHeight(get getFunc, id chainconfig.FeatureID) (uint64, bool, error) {
	data, err := get(featureKey(id))
	if err != nil || data == nil {
		return 0, false, err
	}
	height, err := deserializeUint64(data)
	if err != nil {
		return 0, false, err
	}
	return height, true, nil
}

func combinePortfolios(base, delta statediff.Portfolio) (statediff.Portfolio, error) {
	combined := base
	combined.Balance += delta.Balance
	combined.LeaseIn += delta.LeaseIn
	combined.LeaseOut += delta.LeaseOut
	if len(delta.Assets) > 0 {
		if combined.Assets == nil {
			combined.Assets = make(map[crypto.Hash]int64, len(delta.Assets))
		} else {
			assets := make(map[crypto.Hash]int64, len(base.Assets)+len(delta.Assets))
			for asset, amount := range base.Assets {
				assets[asset] = amount
			}
			combined.Assets = assets
		}
		for asset, amount := range delta.Assets {
			combined.Assets[asset] += amount
		}
	}
	if combined.Balance < 0 {
		return statediff.Portfolio{}, errors.Errorf("negative balance %d after commit", combined.Balance)
	}
	return combined, nil
}
