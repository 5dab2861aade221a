package core

import "fmt"

// Strategy is a W3C/Appium element location strategy.
type Strategy string

// Supported strategies
const (
	StrategyXPath         Strategy = "xpath"
	StrategyUiAutomator   Strategy = "-android uiautomator"
	StrategyID            Strategy = "id"
	StrategyAccessibility Strategy = "accessibility id"
	StrategyClassName     Strategy = "class name"
)

// Valid reports whether s is a strategy the Appium UiAutomator2 driver accepts.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyXPath, StrategyUiAutomator, StrategyID, StrategyAccessibility, StrategyClassName:
		return true
	}
	return false
}

// Locator identifies zero or more elements in the app's UI tree.
type Locator struct {
	Strategy Strategy `yaml:"strategy" json:"strategy"`
	Value    string   `yaml:"value" json:"value"`
}

// XPath builds an xpath locator.
func XPath(value string) Locator {
	return Locator{Strategy: StrategyXPath, Value: value}
}

// UiSelector builds an Android UiAutomator locator.
func UiSelector(value string) Locator {
	return Locator{Strategy: StrategyUiAutomator, Value: value}
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

// Validate checks that the locator can be sent to the server.
func (l Locator) Validate() error {
	if !l.Strategy.Valid() {
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("unsupported locator strategy %q", l.Strategy))
	}
	if l.Value == "" {
		return ErrMissingRequired.WithMessage("locator value is empty")
	}
	return nil
}

// String returns "strategy=value" for logs.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}
