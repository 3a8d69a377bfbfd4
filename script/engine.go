package script

import (
	"github.com/pkg/errors"

	"github.com/lunchact/Waves/crypto"
)

// Evaluation bounds. A predicate that exceeds them fails with an execution
// error instead of hanging the block fold.
const (
	// MaxSteps is the maximum number of executed instructions per run.
	MaxSteps = 2048

	// maxStackDepth bounds the evaluation stack.
	maxStackDepth = 64
)

type valueKind uint8

const (
	valueInt valueKind = iota
	valueBool
)

type stackValue struct {
	kind valueKind
	num  int64
}

func intValue(num int64) stackValue {
	return stackValue{kind: valueInt, num: num}
}

func boolValue(b bool) stackValue {
	if b {
		return stackValue{kind: valueBool, num: 1}
	}
	return stackValue{kind: valueBool, num: 0}
}

// Run evaluates the predicate against env. It returns the boolean the
// program leaves on the stack, or an error if the program is malformed,
// exceeds the step budget, or terminates with anything other than exactly
// one boolean. Run never blocks and performs no I/O.
func Run(s *Script, env *Env) (bool, error) {
	stack := make([]stackValue, 0, 8)

	push := func(val stackValue) error {
		if len(stack) >= maxStackDepth {
			return errors.Errorf("stack depth exceeds maximum %d", maxStackDepth)
		}
		stack = append(stack, val)
		return nil
	}
	pop := func() (stackValue, error) {
		if len(stack) == 0 {
			return stackValue{}, errors.New("stack underflow")
		}
		val := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return val, nil
	}
	popInt := func() (int64, error) {
		val, err := pop()
		if err != nil {
			return 0, err
		}
		if val.kind != valueInt {
			return 0, errors.New("expected integer on stack, got boolean")
		}
		return val.num, nil
	}
	popBool := func() (bool, error) {
		val, err := pop()
		if err != nil {
			return false, err
		}
		if val.kind != valueBool {
			return false, errors.New("expected boolean on stack, got integer")
		}
		return val.num != 0, nil
	}

	steps := 0
	for pc := 0; pc < len(s.Code); {
		steps++
		if steps > MaxSteps {
			return false, errors.Errorf("step budget of %d exceeded", MaxSteps)
		}
		op := s.Code[pc]
		pc++

		var err error
		switch op {
		case OpFalse:
			err = push(boolValue(false))
		case OpTrue:
			err = push(boolValue(true))
		case OpPush64:
			if pc+8 > len(s.Code) {
				return false, errors.New("truncated push operand")
			}
			val := int64(0)
			for i := 0; i < 8; i++ {
				val |= int64(s.Code[pc+i]) << (8 * i)
			}
			pc += 8
			err = push(intValue(val))
		case OpHeight:
			err = push(intValue(int64(env.Height)))
		case OpFee:
			err = push(intValue(env.Fee))
		case OpTimestamp:
			err = push(intValue(env.Timestamp))
		case OpProofCount:
			err = push(intValue(int64(len(env.Entity.GetProofs()))))
		case OpEqual, OpLessThan, OpGreaterThan:
			var right, left int64
			if right, err = popInt(); err != nil {
				break
			}
			if left, err = popInt(); err != nil {
				break
			}
			switch op {
			case OpEqual:
				err = push(boolValue(left == right))
			case OpLessThan:
				err = push(boolValue(left < right))
			case OpGreaterThan:
				err = push(boolValue(left > right))
			}
		case OpNot:
			var val bool
			if val, err = popBool(); err != nil {
				break
			}
			err = push(boolValue(!val))
		case OpAnd, OpOr:
			var right, left bool
			if right, err = popBool(); err != nil {
				break
			}
			if left, err = popBool(); err != nil {
				break
			}
			if op == OpAnd {
				err = push(boolValue(left && right))
			} else {
				err = push(boolValue(left || right))
			}
		case OpCheckSig:
			var index int64
			if index, err = popInt(); err != nil {
				break
			}
			proofs := env.Entity.GetProofs()
			if index < 0 || index >= int64(len(proofs)) {
				err = push(boolValue(false))
				break
			}
			valid := crypto.VerifySignature(
				env.Entity.GetSenderKey(), proofs[index], env.Entity.CanonicalBytes())
			err = push(boolValue(valid))
		case OpThrow:
			return false, errors.New("predicate raised an explicit throw")
		default:
			return false, errors.Errorf("unknown opcode 0x%02x", op)
		}
		if err != nil {
			return false, err
		}
	}

	if len(stack) != 1 {
		return false, errors.Errorf("predicate finished with %d values on stack, want 1", len(stack))
	}
	result, err := popBool()
	if err != nil {
		return false, errors.Wrap(err, "predicate did not yield a boolean")
	}
	return result, nil
}
