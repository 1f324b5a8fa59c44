package capabilities

import "gopkg.in/yaml.v3"

// LoadConfig parses YAML seed data into a Config. It performs no semantic
// validation itself; NewRegistry rejects any configuration that is not
// total-by-construction.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
