package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/threatresponse/limefetch/pkg/airutil"
	v1 "github.com/threatresponse/limefetch/pkg/api/v1"
	"github.com/threatresponse/limefetch/pkg/downloader"
	"github.com/threatresponse/limefetch/pkg/gpg"
	"github.com/threatresponse/limefetch/pkg/limerepo"
	"k8s.io/apimachinery/pkg/util/yaml"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "resolve and download a kernel module",
	RunE:  fetch,
}

const (
	flagConfig        = "config"
	flagRepo          = "repo"
	flagKernelVersion = "kernel-version"
	flagManifest      = "manifest"
	flagGPGVerify     = "gpg-verify"
	flagGPGKeyring    = "gpg-keyring"
	flagOutputDir     = "output-dir"

	defaultManifestType = "primary"
)

func init() {
	fetchCmd.Flags().StringP(flagConfig, "c", "", "path or URL of a fetch configuration file")
	fetchCmd.Flags().String(flagRepo, "", "repository base URL")
	fetchCmd.Flags().StringP(flagKernelVersion, "k", "", "kernel version to search the repository for")
	fetchCmd.Flags().StringP(flagManifest, "m", "", "manifest type to search")
	fetchCmd.Flags().Bool(flagGPGVerify, false, "fetch and check detached signatures")
	fetchCmd.Flags().String(flagGPGKeyring, "", "keyring of trusted public keys (implies --gpg-verify)")
	fetchCmd.Flags().StringP(flagOutputDir, "o", "", "directory to write the module to")

	_ = fetchCmd.MarkFlagFilename(flagConfig, ".yaml", ".yml")
	_ = fetchCmd.MarkFlagDirname(flagOutputDir)
}

func fetch(cmd *cobra.Command, _ []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	configPath, _ := cmd.Flags().GetString(flagConfig)

	var cfg v1.Fetch
	if configPath != "" {
		var err error
		cfg, err = readConfig(cmd, configPath)
		if err != nil {
			return err
		}
	}
	applyFlags(cmd, &cfg.Spec)

	if cfg.Spec.Repository == "" {
		return fmt.Errorf("a repository must be set with --%s or a configuration file", flagRepo)
	}
	if cfg.Spec.KernelVersion == "" {
		return fmt.Errorf("a kernel version must be set with --%s or a configuration file", flagKernelVersion)
	}
	if cfg.Spec.ManifestType == "" {
		cfg.Spec.ManifestType = defaultManifestType
	}
	if cfg.Spec.OutputDir == "" {
		cfg.Spec.OutputDir = "."
	}

	repo := limerepo.New(airutil.ExpandEnv(cfg.Spec.Repository), cfg.Spec.GPGVerify || cfg.Spec.GPGKeyring != "")
	repo.OutputDir = filepath.Clean(cfg.Spec.OutputDir)
	if cfg.Spec.GPGKeyring != "" {
		keyring, err := gpg.NewKeyring(airutil.ExpandEnv(cfg.Spec.GPGKeyring))
		if err != nil {
			return err
		}
		repo.Verifier = keyring
	}

	path, err := repo.Fetch(cmd.Context(), cfg.Spec.KernelVersion, cfg.Spec.ManifestType)
	if err != nil {
		return err
	}
	log.Info("downloaded kernel module", "path", path)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// applyFlags overlays command line flags onto the configuration.
// A flag set on the command line always wins.
func applyFlags(cmd *cobra.Command, spec *v1.FetchSpec) {
	if s, _ := cmd.Flags().GetString(flagRepo); cmd.Flags().Changed(flagRepo) {
		spec.Repository = s
	}
	if s, _ := cmd.Flags().GetString(flagKernelVersion); cmd.Flags().Changed(flagKernelVersion) {
		spec.KernelVersion = s
	}
	if s, _ := cmd.Flags().GetString(flagManifest); cmd.Flags().Changed(flagManifest) {
		spec.ManifestType = s
	}
	if b, _ := cmd.Flags().GetBool(flagGPGVerify); cmd.Flags().Changed(flagGPGVerify) {
		spec.GPGVerify = b
	}
	if s, _ := cmd.Flags().GetString(flagGPGKeyring); cmd.Flags().Changed(flagGPGKeyring) {
		spec.GPGKeyring = s
	}
	if s, _ := cmd.Flags().GetString(flagOutputDir); cmd.Flags().Changed(flagOutputDir) {
		spec.OutputDir = s
	}
}

func readConfig(cmd *cobra.Command, s string) (v1.Fetch, error) {
	// remote configurations are downloaded first
	if strings.Contains(s, "://") {
		dst, err := downloader.Fetch(cmd.Context(), s)
		if err != nil {
			return v1.Fetch{}, err
		}
		defer os.Remove(dst)
		s = dst
	}
	f, err := os.Open(filepath.Clean(s))
	if err != nil {
		return v1.Fetch{}, err
	}
	defer f.Close()

	var config v1.Fetch
	if err := yaml.NewYAMLOrJSONDecoder(f, 4).Decode(&config); err != nil {
		return v1.Fetch{}, err
	}
	return config, nil
}
