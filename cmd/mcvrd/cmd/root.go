/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/clog"
	"github.com/materials-commons/mcvr/pkg/config"
	"github.com/materials-commons/mcvr/pkg/mcdb"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/mcproxy"
	"github.com/materials-commons/mcvr/pkg/metrics"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcvrd",
	Short: "Run the mcvr virtual resource server",
	Long: `mcvrd serves folders, items and files that live on disk below mapping
roots in the record hierarchy. Requests for anything else are passed to the
native API at MCVR_NATIVE_API_URL.`,
	Run: func(cmd *cobra.Command, args []string) {
		c := config.MustLoadFromMCDotenv()

		logLevel := c.GetKeyWithDefault("MCVR_LOG_LEVEL", "info")
		logOutput := c.GetKeyWithDefault("MCVR_LOG_OUTPUT", "stdout")
		logHandler, err := clog.Setup(logOutput, logLevel)
		if err != nil {
			log.Fatalf("Unable to set up logging: %s", err)
		}

		db := mcdb.MustConnectToDB(c)
		stors := stor.NewGormStors(db)

		native, err := mcproxy.NewNativeHandler(c.GetKey("MCVR_NATIVE_API_URL"))
		if err != nil {
			log.Fatalf("Invalid native API configuration: %s", err)
		}

		var m *metrics.Metrics
		engineOptions := []vr.EngineOption{vr.WithProgress(vr.NewNotificationProgress(stors.NotificationStor))}
		if c.GetBoolKeyWithDefault("MCVR_METRICS", true) {
			m = metrics.New()
			engineOptions = append(engineOptions, vr.WithMetrics(m))
		}

		opts := vr.OptionsFromConfig(c)
		log.Infof("Upload dir: %s", opts.UploadDir)
		if err := os.MkdirAll(opts.UploadDir, 0700); err != nil {
			log.Fatalf("Unable to create upload dir %s: %s", opts.UploadDir, err)
		}

		e := newEcho()
		setupRoutes(e, RouteOpts{
			engine:        vr.NewEngine(stors, opts, engineOptions...),
			stors:         stors,
			native:        native,
			metrics:       m,
			logController: webapi.NewLogController(logHandler, logLevel, logOutput),
		})

		port := c.GetKeyWithDefault("MCVR_PORT", "1354")
		log.Infof("Listening on port %s", port)
		if err := e.Start(":" + port); err != nil {
			log.Fatalf("Unable to start server: %v", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(clientCmd)
}
