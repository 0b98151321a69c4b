package vm

import (
	"github.com/Doom2fan/TwineThing/pkg/compiler/ast"
)

// eval evaluates an expression to a Value. Evaluation errors are
// fatal VM errors.
func (vm *VM) eval(expr ast.Expression) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntValue(e.Value), nil

	case *ast.BoolLiteral:
		return BoolValue(e.Value), nil

	case *ast.StringLiteral:
		return StringValue(e.Value), nil

	case *ast.Variable:
		// Unknown variables read as the empty string.
		if value, ok := vm.vars[e.Name]; ok {
			return value, nil
		}
		return StringValue(""), nil

	case *ast.FunctionCall:
		return vm.evalCall(e)

	case *ast.UnaryExpression:
		operand, err := vm.eval(e.Operand)
		if err != nil {
			return Value{}, err
		}
		if e.Op == ast.LogicalNot {
			return BoolValue(!operand.AsBool()), nil
		}
		return IntValue(-operand.AsInt()), nil

	case *ast.BinaryExpression:
		return vm.evalBinary(e)
	}

	return Value{}, vm.errorf("Cannot evaluate expression %s.", expr)
}

func (vm *VM) evalCall(call *ast.FunctionCall) (Value, error) {
	fn, ok := vm.builtins[call.Name]
	if !ok {
		return Value{}, vm.errorf("Unknown function %q.", call.Name)
	}

	args := make([]Value, len(call.Args))
	for i, argExpr := range call.Args {
		arg, err := vm.eval(argExpr)
		if err != nil {
			return Value{}, err
		}
		args[i] = arg
	}
	return fn(vm, args)
}

func (vm *VM) evalBinary(expr *ast.BinaryExpression) (Value, error) {
	// or/and short-circuit: the right side only runs when the left
	// side does not decide the result.
	switch expr.Op {
	case ast.Or:
		left, err := vm.eval(expr.Left)
		if err != nil {
			return Value{}, err
		}
		if left.AsBool() {
			return BoolValue(true), nil
		}
		right, err := vm.eval(expr.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right.AsBool()), nil

	case ast.And:
		left, err := vm.eval(expr.Left)
		if err != nil {
			return Value{}, err
		}
		if !left.AsBool() {
			return BoolValue(false), nil
		}
		right, err := vm.eval(expr.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right.AsBool()), nil
	}

	left, err := vm.eval(expr.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := vm.eval(expr.Right)
	if err != nil {
		return Value{}, err
	}

	switch expr.Op {
	case ast.Eq, ast.NotEq:
		equal, ok := equalValues(left, right)
		if !ok {
			return Value{}, vm.errorf("Cannot compare values of types %s and %s.",
				left.Kind, right.Kind)
		}
		if expr.Op == ast.NotEq {
			equal = !equal
		}
		return BoolValue(equal), nil

	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		if left.Kind != KindInt || right.Kind != KindInt {
			return Value{}, vm.errorf("Cannot order values of types %s and %s.",
				left.Kind, right.Kind)
		}
		a, b := left.Int, right.Int
		switch expr.Op {
		case ast.Lt:
			return BoolValue(a < b), nil
		case ast.Gt:
			return BoolValue(a > b), nil
		case ast.Le:
			return BoolValue(a <= b), nil
		default:
			return BoolValue(a >= b), nil
		}
	}

	// Arithmetic coerces both sides to int.
	a, b := left.AsInt(), right.AsInt()
	switch expr.Op {
	case ast.Add:
		return IntValue(a + b), nil
	case ast.Sub:
		return IntValue(a - b), nil
	case ast.Mul:
		return IntValue(a * b), nil
	case ast.Div:
		if b == 0 {
			vm.log.Warn("division by zero evaluates to 0", "passage", vm.passage.Name)
			return IntValue(0), nil
		}
		return IntValue(a / b), nil
	case ast.Rem:
		if b == 0 {
			vm.log.Warn("remainder by zero evaluates to 0", "passage", vm.passage.Name)
			return IntValue(0), nil
		}
		return IntValue(a % b), nil
	}

	return Value{}, vm.errorf("Cannot evaluate operator %q.", expr.Op.Name())
}
