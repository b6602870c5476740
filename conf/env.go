package conf

import "fmt"

// EnvironmentEnum deployment environment
type EnvironmentEnum int

const (
	LocalEnvironmentEnum EnvironmentEnum = iota + 1
	MainnetEnvironmentEnum
	TestnetEnvironmentEnum
	ExampleEnvironmentEnum
)

// SystemEnvironmentEnum current environment, set by the entrypoint before InitConfig
var SystemEnvironmentEnum = LocalEnvironmentEnum

// ConfigPath overrides the environment yaml when not empty
var ConfigPath string

// ParseEnvironment maps the --env flag value to an environment
func ParseEnvironment(env string) (EnvironmentEnum, error) {
	switch env {
	case "loc":
		return LocalEnvironmentEnum, nil
	case "mainnet":
		return MainnetEnvironmentEnum, nil
	case "testnet":
		return TestnetEnvironmentEnum, nil
	case "example":
		return ExampleEnvironmentEnum, nil
	default:
		return 0, fmt.Errorf("unknown environment: %s", env)
	}
}

// GetYaml returns the config file for the current environment
func GetYaml() string {
	if ConfigPath != "" {
		return ConfigPath
	}
	switch SystemEnvironmentEnum {
	case MainnetEnvironmentEnum:
		return "./conf/conf_pro.yaml"
	case TestnetEnvironmentEnum:
		return "./conf/conf_test.yaml"
	case ExampleEnvironmentEnum:
		return "./conf/conf_example.yaml"
	default:
		return "./conf/conf_loc.yaml"
	}
}
