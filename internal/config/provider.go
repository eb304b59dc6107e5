package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

// ConfigFileName is the project marker and configuration file.
const ConfigFileName = "composer.yaml"

// Provider resolves the complete RuntimeConfig from a configured viper
// instance. It runs once at startup; everything downstream treats the
// result as read-only.
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".composer"),
		TemplatesDir:   v.GetString("templates_dir"),
		SolcPath:       v.GetString("solc.path"),
		SolcOptimize:   v.GetBool("solc.optimize"),
		SolcRuns:       v.GetInt("solc.runs"),
		CompileTimeout: v.GetDuration("solc.timeout"),
		ImportRoots:    v.GetStringSlice("solc.import_roots"),
		PrivateKey:     v.GetString("private_key"),
		Confirmations:  uint64(v.GetInt("confirmations")),
		ConfirmTimeout: v.GetDuration("confirm_timeout"),
		SignTimeout:    v.GetDuration("sign_timeout"),
		ArtifactDir:    v.GetString("artifact_dir"),
		ListenAddr:     v.GetString("listen_addr"),
		AllowedOrigins: v.GetStringSlice("allowed_origins"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
	}

	if name := v.GetString("network"); name != "" {
		network, err := resolveNetwork(v, name)
		if err != nil {
			return nil, err
		}
		cfg.Network = network
	}

	return cfg, nil
}

// resolveNetwork looks the named network up in the networks section of
// composer.yaml.
func resolveNetwork(v *viper.Viper, name string) (*domain.Network, error) {
	networks := make(map[string]*domain.Network)
	if err := v.UnmarshalKey("networks", &networks); err != nil {
		return nil, fmt.Errorf("failed to parse networks config: %w", err)
	}

	network, ok := networks[name]
	if !ok {
		known := make([]string, 0, len(networks))
		for k := range networks {
			known = append(known, k)
		}
		return nil, fmt.Errorf("network %q not configured (known: %s)", name, strings.Join(known, ", "))
	}
	if network.RPCURL == "" {
		return nil, fmt.Errorf("network %q has no rpc_url", name)
	}
	network.Name = name
	return network, nil
}

// FindProjectRoot walks up from the current directory to the nearest
// composer.yaml.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		marker := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(marker); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a composer project (%s not found)", ConfigFileName)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance bound to the command's
// flags. COMPOSER_* environment variables override file settings; flags
// override both.
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(projectRoot)

	v.SetEnvPrefix("COMPOSER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("solc.path", "solc")
	v.SetDefault("solc.optimize", true)
	v.SetDefault("solc.runs", 200)
	v.SetDefault("solc.timeout", "2m")
	v.SetDefault("confirmations", 1)
	v.SetDefault("confirm_timeout", "5m")
	v.SetDefault("sign_timeout", "1m")
	v.SetDefault("artifact_dir", "deployments")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	// A missing config file is fine; defaults plus env cover local use.
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}
