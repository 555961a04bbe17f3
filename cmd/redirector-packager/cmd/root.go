package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/redirector-packager/internal/config"
	"github.com/oshokin/redirector-packager/internal/service/builder"
	"github.com/oshokin/redirector-packager/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// root overrides the extension source tree.
	root string
	// outputFolder overrides the folder receiving the archives.
	outputFolder string
	// logLevel overrides the configured log level.
	logLevel string
	// failFast stops at the first failing target.
	failFast bool

	// rootCmd represents the base command for packaging the extension.
	rootCmd = &cobra.Command{
		Use:   "redirector-packager",
		Short: "Package the Redirector extension for Chrome, Edge, Opera and Firefox.",
		Long: `Builds one archive per browser from the extension source tree.

Chrome, Edge and Opera get Manifest V3 packages (redirector-<browser>.zip),
Firefox gets a Manifest V2 package (redirector-firefox.xpi) built from
manifest-firefox.json when that file exists. Development files, documentation
and hidden folders are left out.

When extension-certificate.pem is present, the Opera archive is also passed
to nex-build.sh to produce redirector-opera.nex.

Every browser is attempted even if an earlier one fails; the command exits
with a non-zero status when any of them did.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &builder.Options{
				ConfigPath:   configPath,
				Root:         root,
				OutputFolder: outputFolder,
				LogLevel:     logLevel,
				FailFast:     failFast,
			}

			return builder.Run(ctx, options)
		},
	}
)

// Execute runs the redirector-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = rootCmd.ErrOrStderr().Write([]byte("Build failed: " + err.Error() + "\n"))

		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&root, "root", "r", "", "extension source tree (default from configuration, then \".\")")
	flags.StringVarP(&outputFolder, "output", "o", "", "folder receiving the archives (default \"build\")")
	flags.StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	flags.BoolVar(&failFast, "fail-fast", false, "stop at the first failing browser")
}
