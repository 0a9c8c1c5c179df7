package backend

import (
	"fmt"

	"cantiere/internal/config"
)

// FromAppConfig converts the application config to adapter config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	inbox := InboxType(appConfig.MailBackend)
	if !inbox.IsValid() {
		return Config{}, fmt.Errorf("invalid mail backend in config: %s", appConfig.MailBackend)
	}

	analyzer := AnalyzerType(appConfig.VisionBackend)
	if !analyzer.IsValid() {
		return Config{}, fmt.Errorf("invalid vision backend in config: %s", appConfig.VisionBackend)
	}

	return Config{
		Inbox:    inbox,
		Analyzer: analyzer,

		InboxAddress: "site@cantiere.local",

		AnthropicAPIKey: appConfig.AnthropicAPIKey,
		AnthropicModel:  appConfig.AnthropicModel,
	}, nil
}

// Validate validates the adapter configuration
func (c Config) Validate() error {
	if !c.Inbox.IsValid() {
		return fmt.Errorf("invalid inbox type: %s", c.Inbox)
	}
	if !c.Analyzer.IsValid() {
		return fmt.Errorf("invalid analyzer type: %s", c.Analyzer)
	}
	if c.Analyzer == AnthropicAnalyzer && c.AnthropicAPIKey == "" {
		return fmt.Errorf("Anthropic API key is required for the anthropic analyzer")
	}
	return nil
}
