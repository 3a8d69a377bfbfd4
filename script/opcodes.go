package script

import "fmt"

// Opcodes of the predicate language. The set is closed: an unknown byte
// fails evaluation.
const (
	// Constants.
	OpFalse  = 0x00
	OpTrue   = 0x01
	OpPush64 = 0x02 // followed by an 8-byte little-endian integer

	// Environment accessors.
	OpHeight     = 0x10
	OpFee        = 0x11
	OpTimestamp  = 0x12
	OpProofCount = 0x13

	// Comparisons. Pop two integers, push a boolean.
	OpEqual       = 0x20
	OpLessThan    = 0x21
	OpGreaterThan = 0x22

	// Boolean connectives.
	OpNot = 0x30
	OpAnd = 0x31
	OpOr  = 0x32

	// OpCheckSig verifies the proof at the index given by the popped
	// integer against the entity's sender key over its canonical bytes,
	// and pushes the outcome.
	OpCheckSig = 0x40

	// OpThrow aborts evaluation with an execution error.
	OpThrow = 0x50
)

var opcodeNames = map[byte]string{
	OpFalse:       "FALSE",
	OpTrue:        "TRUE",
	OpPush64:      "PUSH",
	OpHeight:      "HEIGHT",
	OpFee:         "FEE",
	OpTimestamp:   "TIMESTAMP",
	OpProofCount:  "PROOFCOUNT",
	OpEqual:       "EQUAL",
	OpLessThan:    "LT",
	OpGreaterThan: "GT",
	OpNot:         "NOT",
	OpAnd:         "AND",
	OpOr:          "OR",
	OpCheckSig:    "CHECKSIG",
	OpThrow:       "THROW",
}

func opcodeName(op byte) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", op)
}

// PushInt64 assembles an OpPush64 instruction for the given value.
func PushInt64(val int64) []byte {
	buf := make([]byte, 9)
	buf[0] = OpPush64
	for i := 0; i < 8; i++ {
		buf[1+i] = byte(val >> (8 * i))
	}
	return buf
}
