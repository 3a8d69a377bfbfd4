package wire

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
)

// GenesisTx is the bootstrap issuance of base currency to an account. It
// carries no sender, no fee and no proofs, and is only valid in the genesis
// block.
type GenesisTx struct {
	TxCommon
	Recipient crypto.Address
	Amount    int64
}

// Kind returns KindGenesis.
func (tx *GenesisTx) Kind() TxKind { return KindGenesis }

// GetID returns the transaction id.
func (tx *GenesisTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns false: genesis issuance only moves base currency.
func (tx *GenesisTx) AssetRef() (crypto.Hash, bool) { return crypto.Hash{}, false }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *GenesisTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *GenesisTx) writeCanonical(w io.Writer) error {
	if err := writeUint8(w, uint8(KindGenesis)); err != nil {
		return err
	}
	if err := writeInt64(w, tx.Timestamp); err != nil {
		return err
	}
	if err := writeAddress(w, tx.Recipient); err != nil {
		return err
	}
	return writeInt64(w, tx.Amount)
}

// Serialize encodes the transaction to w.
func (tx *GenesisTx) Serialize(w io.Writer) error {
	return tx.writeCanonical(w)
}

func readGenesisTx(r io.Reader) (*GenesisTx, error) {
	tx := &GenesisTx{}
	var err error
	if tx.Timestamp, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Recipient, err = readAddress(r); err != nil {
		return nil, err
	}
	if tx.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// PaymentTx moves base currency from the sender to a recipient.
type PaymentTx struct {
	TxCommon
	Recipient crypto.Address
	Amount    int64
}

// Kind returns KindPayment.
func (tx *PaymentTx) Kind() TxKind { return KindPayment }

// GetID returns the transaction id.
func (tx *PaymentTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns false: payments only move base currency.
func (tx *PaymentTx) AssetRef() (crypto.Hash, bool) { return crypto.Hash{}, false }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *PaymentTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *PaymentTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindPayment); err != nil {
		return err
	}
	if err := writeAddress(w, tx.Recipient); err != nil {
		return err
	}
	return writeInt64(w, tx.Amount)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *PaymentTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readPaymentTx(r io.Reader) (*PaymentTx, error) {
	tx := &PaymentTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Recipient, err = readAddress(r); err != nil {
		return nil, err
	}
	if tx.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// IssueTx creates a new asset owned by the sender. The asset id is the
// transaction id.
type IssueTx struct {
	TxCommon
	Name        []byte
	Description []byte
	Quantity    int64
	Decimals    uint8
	Reissuable  bool
}

// Kind returns KindIssue.
func (tx *IssueTx) Kind() TxKind { return KindIssue }

// GetID returns the transaction id.
func (tx *IssueTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns false: the issued asset does not exist yet, so there is
// no asset script to consult.
func (tx *IssueTx) AssetRef() (crypto.Hash, bool) { return crypto.Hash{}, false }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *IssueTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *IssueTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindIssue); err != nil {
		return err
	}
	if err := writeVarBytes(w, tx.Name); err != nil {
		return err
	}
	if err := writeVarBytes(w, tx.Description); err != nil {
		return err
	}
	if err := writeInt64(w, tx.Quantity); err != nil {
		return err
	}
	if err := writeUint8(w, tx.Decimals); err != nil {
		return err
	}
	return writeBool(w, tx.Reissuable)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *IssueTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readIssueTx(r io.Reader) (*IssueTx, error) {
	tx := &IssueTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Name, err = readVarBytes(r, MaxAssetNameSize, "asset name"); err != nil {
		return nil, err
	}
	if tx.Description, err = readVarBytes(r, MaxAssetDescriptionSize, "asset description"); err != nil {
		return nil, err
	}
	if tx.Quantity, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Decimals, err = readUint8(r); err != nil {
		return nil, err
	}
	if tx.Reissuable, err = readBool(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// TransferTx moves base currency or an asset from the sender to a
// recipient, with an optional attachment.
type TransferTx struct {
	TxCommon
	Recipient  crypto.Address
	Amount     int64
	Asset      *crypto.Hash
	Attachment []byte
}

// Kind returns KindTransfer.
func (tx *TransferTx) Kind() TxKind { return KindTransfer }

// GetID returns the transaction id.
func (tx *TransferTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns the transferred asset, if the transfer is not in base
// currency.
func (tx *TransferTx) AssetRef() (crypto.Hash, bool) {
	if tx.Asset == nil {
		return crypto.Hash{}, false
	}
	return *tx.Asset, true
}

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *TransferTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *TransferTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindTransfer); err != nil {
		return err
	}
	if err := writeAddress(w, tx.Recipient); err != nil {
		return err
	}
	if err := writeInt64(w, tx.Amount); err != nil {
		return err
	}
	if err := writeOptionalHash(w, tx.Asset); err != nil {
		return err
	}
	return writeVarBytes(w, tx.Attachment)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *TransferTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readTransferTx(r io.Reader) (*TransferTx, error) {
	tx := &TransferTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Recipient, err = readAddress(r); err != nil {
		return nil, err
	}
	if tx.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Asset, err = readOptionalHash(r); err != nil {
		return nil, err
	}
	if tx.Attachment, err = readVarBytes(r, MaxAttachmentSize, "attachment"); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// ReissueTx increases the quantity of an existing reissuable asset. Only
// the issuer may reissue.
type ReissueTx struct {
	TxCommon
	Asset      crypto.Hash
	Quantity   int64
	Reissuable bool
}

// Kind returns KindReissue.
func (tx *ReissueTx) Kind() TxKind { return KindReissue }

// GetID returns the transaction id.
func (tx *ReissueTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns the reissued asset.
func (tx *ReissueTx) AssetRef() (crypto.Hash, bool) { return tx.Asset, true }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *ReissueTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *ReissueTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindReissue); err != nil {
		return err
	}
	if err := writeHash(w, tx.Asset); err != nil {
		return err
	}
	if err := writeInt64(w, tx.Quantity); err != nil {
		return err
	}
	return writeBool(w, tx.Reissuable)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *ReissueTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readReissueTx(r io.Reader) (*ReissueTx, error) {
	tx := &ReissueTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Asset, err = readHash(r); err != nil {
		return nil, err
	}
	if tx.Quantity, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Reissuable, err = readBool(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// BurnTx destroys part of the sender's holding of an asset.
type BurnTx struct {
	TxCommon
	Asset  crypto.Hash
	Amount int64
}

// Kind returns KindBurn.
func (tx *BurnTx) Kind() TxKind { return KindBurn }

// GetID returns the transaction id.
func (tx *BurnTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns the burned asset.
func (tx *BurnTx) AssetRef() (crypto.Hash, bool) { return tx.Asset, true }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *BurnTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *BurnTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindBurn); err != nil {
		return err
	}
	if err := writeHash(w, tx.Asset); err != nil {
		return err
	}
	return writeInt64(w, tx.Amount)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *BurnTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readBurnTx(r io.Reader) (*BurnTx, error) {
	tx := &BurnTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Asset, err = readHash(r); err != nil {
		return nil, err
	}
	if tx.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// LeaseTx leases base currency from the sender to a recipient. The leased
// amount stays in the sender's balance but counts as leased-out until the
// lease is canceled.
type LeaseTx struct {
	TxCommon
	Recipient crypto.Address
	Amount    int64
}

// Kind returns KindLease.
func (tx *LeaseTx) Kind() TxKind { return KindLease }

// GetID returns the transaction id, which doubles as the lease id.
func (tx *LeaseTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns false: leases only concern base currency.
func (tx *LeaseTx) AssetRef() (crypto.Hash, bool) { return crypto.Hash{}, false }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *LeaseTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *LeaseTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindLease); err != nil {
		return err
	}
	if err := writeAddress(w, tx.Recipient); err != nil {
		return err
	}
	return writeInt64(w, tx.Amount)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *LeaseTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readLeaseTx(r io.Reader) (*LeaseTx, error) {
	tx := &LeaseTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Recipient, err = readAddress(r); err != nil {
		return nil, err
	}
	if tx.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// LeaseCancelTx cancels an active lease created by the sender.
type LeaseCancelTx struct {
	TxCommon
	LeaseID crypto.Hash
}

// Kind returns KindLeaseCancel.
func (tx *LeaseCancelTx) Kind() TxKind { return KindLeaseCancel }

// GetID returns the transaction id.
func (tx *LeaseCancelTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns false: leases only concern base currency.
func (tx *LeaseCancelTx) AssetRef() (crypto.Hash, bool) { return crypto.Hash{}, false }

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *LeaseCancelTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *LeaseCancelTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindLeaseCancel); err != nil {
		return err
	}
	return writeHash(w, tx.LeaseID)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *LeaseCancelTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readLeaseCancelTx(r io.Reader) (*LeaseCancelTx, error) {
	tx := &LeaseCancelTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.LeaseID, err = readHash(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// MassTransferEntry is one recipient of a mass-transfer transaction.
type MassTransferEntry struct {
	Recipient crypto.Address
	Amount    int64
}

// MassTransferTx moves base currency or an asset from the sender to up to
// MaxMassTransferEntries recipients at once.
type MassTransferTx struct {
	TxCommon
	Asset      *crypto.Hash
	Transfers  []MassTransferEntry
	Attachment []byte
}

// Kind returns KindMassTransfer.
func (tx *MassTransferTx) Kind() TxKind { return KindMassTransfer }

// GetID returns the transaction id.
func (tx *MassTransferTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns the transferred asset, if the transfer is not in base
// currency.
func (tx *MassTransferTx) AssetRef() (crypto.Hash, bool) {
	if tx.Asset == nil {
		return crypto.Hash{}, false
	}
	return *tx.Asset, true
}

// TotalAmount returns the sum of all transfer amounts, or an error on
// overflow.
func (tx *MassTransferTx) TotalAmount() (int64, error) {
	total := int64(0)
	for _, entry := range tx.Transfers {
		next := total + entry.Amount
		if next < total {
			return 0, errors.New("mass-transfer total amount overflows int64")
		}
		total = next
	}
	return total, nil
}

// CanonicalBytes returns the deterministic encoding of the transaction.
func (tx *MassTransferTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *MassTransferTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindMassTransfer); err != nil {
		return err
	}
	if err := writeOptionalHash(w, tx.Asset); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(tx.Transfers))); err != nil {
		return err
	}
	for _, entry := range tx.Transfers {
		if err := writeAddress(w, entry.Recipient); err != nil {
			return err
		}
		if err := writeInt64(w, entry.Amount); err != nil {
			return err
		}
	}
	return writeVarBytes(w, tx.Attachment)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *MassTransferTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readMassTransferTx(r io.Reader) (*MassTransferTx, error) {
	tx := &MassTransferTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.Asset, err = readOptionalHash(r); err != nil {
		return nil, err
	}
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	if int(count) > MaxMassTransferEntries {
		return nil, errors.Errorf("mass-transfer entry count %d exceeds maximum %d",
			count, MaxMassTransferEntries)
	}
	tx.Transfers = make([]MassTransferEntry, count)
	for i := range tx.Transfers {
		if tx.Transfers[i].Recipient, err = readAddress(r); err != nil {
			return nil, err
		}
		if tx.Transfers[i].Amount, err = readInt64(r); err != nil {
			return nil, err
		}
	}
	if tx.Attachment, err = readVarBytes(r, MaxAttachmentSize, "attachment"); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}

// ExchangeTx settles a trade between a buy order and a sell order. The
// sender is the matcher; the orders carry their own senders and proofs.
type ExchangeTx struct {
	TxCommon
	BuyOrder       *Order
	SellOrder      *Order
	Price          int64
	Amount         int64
	BuyMatcherFee  int64
	SellMatcherFee int64
}

// Kind returns KindExchange.
func (tx *ExchangeTx) Kind() TxKind { return KindExchange }

// GetID returns the transaction id.
func (tx *ExchangeTx) GetID() crypto.Hash { return tx.ensureID(tx) }

// AssetRef returns false: asset-script checks for exchanges are applied per
// order pair by the matcher, outside this core.
func (tx *ExchangeTx) AssetRef() (crypto.Hash, bool) { return crypto.Hash{}, false }

// CanonicalBytes returns the deterministic encoding of the transaction.
// Orders are embedded whole, proofs included, since the matcher signs over
// the already-signed orders.
func (tx *ExchangeTx) CanonicalBytes() []byte { return canonicalBytes(tx.writeCanonical) }

func (tx *ExchangeTx) writeCanonical(w io.Writer) error {
	if err := tx.writeCanonicalCommon(w, KindExchange); err != nil {
		return err
	}
	if err := tx.BuyOrder.Serialize(w); err != nil {
		return err
	}
	if err := tx.SellOrder.Serialize(w); err != nil {
		return err
	}
	if err := writeInt64(w, tx.Price); err != nil {
		return err
	}
	if err := writeInt64(w, tx.Amount); err != nil {
		return err
	}
	if err := writeInt64(w, tx.BuyMatcherFee); err != nil {
		return err
	}
	return writeInt64(w, tx.SellMatcherFee)
}

// Serialize encodes the transaction, proofs included, to w.
func (tx *ExchangeTx) Serialize(w io.Writer) error {
	if err := tx.writeCanonical(w); err != nil {
		return err
	}
	return writeProofs(w, tx.Proofs)
}

func readExchangeTx(r io.Reader) (*ExchangeTx, error) {
	tx := &ExchangeTx{}
	if err := tx.readCanonicalCommon(r); err != nil {
		return nil, err
	}
	var err error
	if tx.BuyOrder, err = DeserializeOrder(r); err != nil {
		return nil, err
	}
	if tx.SellOrder, err = DeserializeOrder(r); err != nil {
		return nil, err
	}
	if tx.Price, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Amount, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.BuyMatcherFee, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.SellMatcherFee, err = readInt64(r); err != nil {
		return nil, err
	}
	if tx.Proofs, err = readProofs(r); err != nil {
		return nil, err
	}
	return tx, nil
}
