package state

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/statediff"
)

// Storage encodings are little-endian and versionless; the store is not a
// wire format and is rebuilt on reindex.

func serializeUint64(val uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, val)
	return buf
}

func deserializeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, errors.Errorf("invalid uint64 record length %d", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

func putInt64(buf *bytes.Buffer, val int64) {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(val))
	buf.Write(scratch[:])
}

func takeInt64(r *bytes.Reader) (int64, error) {
	var scratch [8]byte
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return int64(binary.LittleEndian.Uint64(scratch[:])), nil
}

func putBytes(buf *bytes.Buffer, data []byte) {
	var scratch [2]byte
	binary.LittleEndian.PutUint16(scratch[:], uint16(len(data)))
	buf.Write(scratch[:])
	buf.Write(data)
}

func takeBytes(r *bytes.Reader) ([]byte, error) {
	var scratch [2]byte
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	length := binary.LittleEndian.Uint16(scratch[:])
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func serializePortfolio(p statediff.Portfolio) []byte {
	buf := &bytes.Buffer{}
	putInt64(buf, p.Balance)
	putInt64(buf, p.LeaseIn)
	putInt64(buf, p.LeaseOut)
	var scratch [2]byte
	binary.LittleEndian.PutUint16(scratch[:], uint16(len(p.Assets)))
	buf.Write(scratch[:])
	for asset, amount := range p.Assets {
		buf.Write(asset[:])
		putInt64(buf, amount)
	}
	return buf.Bytes()
}

func deserializePortfolio(data []byte) (statediff.Portfolio, error) {
	r := bytes.NewReader(data)
	p := statediff.Portfolio{}
	var err error
	if p.Balance, err = takeInt64(r); err != nil {
		return statediff.Portfolio{}, err
	}
	if p.LeaseIn, err = takeInt64(r); err != nil {
		return statediff.Portfolio{}, err
	}
	if p.LeaseOut, err = takeInt64(r); err != nil {
		return statediff.Portfolio{}, err
	}
	var scratch [2]byte
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return statediff.Portfolio{}, errors.WithStack(err)
	}
	count := binary.LittleEndian.Uint16(scratch[:])
	if count > 0 {
		p.Assets = make(map[crypto.Hash]int64, count)
		for i := uint16(0); i < count; i++ {
			var asset crypto.Hash
			if _, err := io.ReadFull(r, asset[:]); err != nil {
				return statediff.Portfolio{}, errors.WithStack(err)
			}
			if p.Assets[asset], err = takeInt64(r); err != nil {
				return statediff.Portfolio{}, err
			}
		}
	}
	return p, nil
}

func serializeAssetDescription(desc *AssetDescription) []byte {
	buf := &bytes.Buffer{}
	buf.Write(desc.Issuer[:])
	putBytes(buf, desc.Name)
	putBytes(buf, desc.Description)
	buf.WriteByte(desc.Decimals)
	if desc.Reissuable {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	putInt64(buf, desc.TotalQuantity)
	if desc.Script != nil {
		putBytes(buf, desc.Script.Code)
	} else {
		putBytes(buf, nil)
	}
	return buf.Bytes()
}

func deserializeAssetDescription(data []byte) (*AssetDescription, error) {
	r := bytes.NewReader(data)
	desc := &AssetDescription{}
	if _, err := io.ReadFull(r, desc.Issuer[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	var err error
	if desc.Name, err = takeBytes(r); err != nil {
		return nil, err
	}
	if desc.Description, err = takeBytes(r); err != nil {
		return nil, err
	}
	flags := make([]byte, 2)
	if _, err := io.ReadFull(r, flags); err != nil {
		return nil, errors.WithStack(err)
	}
	desc.Decimals = flags[0]
	desc.Reissuable = flags[1] == 1
	if desc.TotalQuantity, err = takeInt64(r); err != nil {
		return nil, err
	}
	scriptCode, err := takeBytes(r)
	if err != nil {
		return nil, err
	}
	if len(scriptCode) > 0 {
		desc.Script = script.New(scriptCode)
	}
	return desc, nil
}

func serializeLeaseDetails(lease *LeaseDetails) []byte {
	buf := &bytes.Buffer{}
	if lease.Active {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(lease.Sender[:])
	buf.Write(lease.Recipient[:])
	putInt64(buf, lease.Amount)
	return buf.Bytes()
}

func deserializeLeaseDetails(data []byte) (*LeaseDetails, error) {
	r := bytes.NewReader(data)
	lease := &LeaseDetails{}
	activeByte := make([]byte, 1)
	if _, err := io.ReadFull(r, activeByte); err != nil {
		return nil, errors.WithStack(err)
	}
	lease.Active = activeByte[0] == 1
	if _, err := io.ReadFull(r, lease.Sender[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := io.ReadFull(r, lease.Recipient[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	var err error
	if lease.Amount, err = takeInt64(r); err != nil {
		return nil, err
	}
	return lease, nil
}

func serializeTxMeta(meta statediff.TxMeta) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(meta.Kind))
	putInt64(buf, meta.Timestamp)
	return buf.Bytes()
}

func serializeOrderFill(fill statediff.OrderFill) []byte {
	buf := &bytes.Buffer{}
	putInt64(buf, fill.VolumeExecuted)
	putInt64(buf, fill.FeePaid)
	return buf.Bytes()
}

func deserializeOrderFill(data []byte) (statediff.OrderFill, error) {
	r := bytes.NewReader(data)
	fill := statediff.OrderFill{}
	var err error
	if fill.VolumeExecuted, err = takeInt64(r); err != nil {
		return statediff.OrderFill{}, err
	}
	if fill.FeePaid, err = takeInt64(r); err != nil {
		return statediff.OrderFill{}, err
	}
	return fill, nil
}
