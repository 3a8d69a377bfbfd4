package state

import (
	"encoding/binary"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/crypto"
)

// Key prefixes. Every record type lives under its own single-byte prefix.
const (
	prefixHeight        = 'h'
	prefixPortfolio     = 'p'
	prefixAccountScript = 's'
	prefixAsset         = 'a'
	prefixLease         = 'l'
	prefixFeature       = 'f'
	prefixTxMeta        = 't'
	prefixOrderFill     = 'o'
	prefixBlock         = 'b'
	prefixBlockHeight   = 'i'
)

func heightKey() []byte {
	return []byte{prefixHeight}
}

func portfolioKey(addr crypto.Address) []byte {
	return append([]byte{prefixPortfolio}, addr[:]...)
}

func accountScriptKey(addr crypto.Address) []byte {
	return append([]byte{prefixAccountScript}, addr[:]...)
}

func assetKey(asset crypto.Hash) []byte {
	return append([]byte{prefixAsset}, asset[:]...)
}

func leaseKey(leaseID crypto.Hash) []byte {
	return append([]byte{prefixLease}, leaseID[:]...)
}

func featureKey(id chainconfig.FeatureID) []byte {
	key := make([]byte, 3)
	key[0] = prefixFeature
	binary.LittleEndian.PutUint16(key[1:], uint16(id))
	return key
}

func txMetaKey(txID crypto.Hash) []byte {
	return append([]byte{prefixTxMeta}, txID[:]...)
}

func orderFillKey(orderID crypto.Hash) []byte {
	return append([]byte{prefixOrderFill}, orderID[:]...)
}

func blockKey(blockID crypto.Hash) []byte {
	return append([]byte{prefixBlock}, blockID[:]...)
}

func blockAtHeightKey(height uint64) []byte {
	key := make([]byte, 9)
	key[0] = prefixBlockHeight
	binary.LittleEndian.PutUint64(key[1:], height)
	return key
}
