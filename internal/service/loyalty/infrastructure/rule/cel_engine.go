// internal/service/loyalty/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"bistro/internal/service/loyalty/domain/port"
)

// CELRuleEngine 是 port.RuleEngine 的 CEL 实现。
// 奖励上的资格表达式是一个返回布尔值的 CEL 程序，
// 例如 `balance >= 500 && restaurant_id == "r-42"`。
// 编译结果按表达式源码缓存。
type CELRuleEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELRuleEngine 创建一个规则引擎实例。
func NewCELRuleEngine() (*CELRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("customer_id", cel.StringType),
		cel.Variable("restaurant_id", cel.StringType),
		cel.Variable("balance", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELRuleEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

// Evaluate 实现 port.RuleEngine。
func (e *CELRuleEngine) Evaluate(ruleDefinition string, fact port.Fact) (bool, error) {
	prg, err := e.program(ruleDefinition)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"customer_id":   fact.CustomerID,
		"restaurant_id": fact.RestaurantID,
		"balance":       fact.Balance,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate eligibility rule: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eligibility rule did not evaluate to a boolean: %v", out.Value())
	}
	return result, nil
}

func (e *CELRuleEngine) program(src string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[src]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid eligibility rule: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule program: %w", err)
	}

	e.mu.Lock()
	e.programs[src] = prg
	e.mu.Unlock()
	return prg, nil
}
