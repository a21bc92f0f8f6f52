// internal/service/loyalty/domain/port/rule.go
package port

// Fact 是资格规则评估时可见的事实集合。
type Fact struct {
	CustomerID   string `json:"customer_id"`
	RestaurantID string `json:"restaurant_id"`
	Balance      int    `json:"balance"`
}

// RuleEngine 评估奖励上配置的资格表达式。
// 具体实现位于基础设施层（CEL 适配器）。
type RuleEngine interface {
	Evaluate(ruleDefinition string, fact Fact) (bool, error)
}
