package services

import (
	"errors"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/paulexconde/complyform/internal/models"
	"go.uber.org/zap"
)

// Decides whether a condition holds for an answer value.
type ConditionEvaluator interface {
	// Evaluate never fails: a nil condition or an unknown operator is false.
	Evaluate(cond *models.Condition, value models.Value) bool
}

type conditionEvaluatorImpl struct {
	logger *zap.Logger
}

// Instantiate the `ConditionEvaluator`.
func NewConditionEvaluator(logger *zap.Logger) ConditionEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &conditionEvaluatorImpl{logger: logger}
}

func (c *conditionEvaluatorImpl) Evaluate(cond *models.Condition, value models.Value) bool {
	if cond == nil {
		return false
	}

	switch cond.Operator {
	case models.OpEquals:
		return looseEquals(value, cond.Value)
	case models.OpNotEquals:
		return !looseEquals(value, cond.Value)
	case models.OpContains:
		return contains(value, cond.Value)
	case models.OpGreaterThan:
		return compareNumbers(value, cond.Value, func(a, b float64) bool { return a > b })
	case models.OpLessThan:
		return compareNumbers(value, cond.Value, func(a, b float64) bool { return a < b })
	case models.OpGreaterThanOrEqual:
		return compareNumbers(value, cond.Value, func(a, b float64) bool { return a >= b })
	case models.OpLessThanOrEqual:
		return compareNumbers(value, cond.Value, func(a, b float64) bool { return a <= b })
	case models.OpIsEmpty:
		return value.IsEmpty()
	case models.OpIsNotEmpty:
		return !value.IsEmpty()
	case models.OpExpression:
		match, err := evaluateExpression(cond.Value.String(), map[string]any{"value": value.Native()})
		if err != nil {
			c.logger.Debug("condition expression failed",
				zap.String("expression", cond.Value.String()),
				zap.Error(err))
			return false
		}
		return match
	default:
		c.logger.Debug("unknown condition operator", zap.String("operator", string(cond.Operator)))
		return false
	}
}

// looseEquals compares as booleans when either side is a boolean, as numbers
// when both sides are numeric and as strings otherwise.
func looseEquals(a, b models.Value) bool {
	if a.Kind == models.KindBool || b.Kind == models.KindBool {
		return a.Truthy() == b.Truthy()
	}

	af, aok := a.Float()
	bf, bok := b.Float()
	if aok && bok {
		return af == bf
	}

	return a.String() == b.String()
}

func contains(haystack, needle models.Value) bool {
	switch haystack.Kind {
	case models.KindList:
		for _, item := range haystack.List {
			if looseEquals(item, needle) {
				return true
			}
		}
		return false
	case models.KindText:
		return strings.Contains(haystack.Text, needle.String())
	default:
		return false
	}
}

func compareNumbers(a, b models.Value, cmp func(a, b float64) bool) bool {
	af, aok := a.Float()
	bf, bok := b.Float()
	if !aok || !bok {
		return false
	}
	return cmp(af, bf)
}

func evaluateExpression(expression string, input map[string]any) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, errors.New("empty expression")
	}

	program, err := expr.Compile(expression, expr.Env(input))
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, input)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)

	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}
