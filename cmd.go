package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type RuntimeArguments struct {
	// EnableService: Provide APIs.
	EnableService bool
	// EnableReport: Publish checkpoints.
	EnableReport bool
	// EnableStateCache: Store snapshots of the state as cache.
	EnableStateCache bool
	// EnableWritable: Accept actions over the API.
	EnableWritable bool
	// EnablePprof: Serve pprof endpoints.
	EnablePprof bool
	// ConfigFilePath: Path of the configuration file.
	ConfigFilePath string
	// MetricAddr: Address of the prometheus endpoint.
	MetricAddr string
	// HeightLimit: Stop replaying at this source height, 0 for none.
	HeightLimit uint
}

func NewRuntimeArguments() *RuntimeArguments {
	return &RuntimeArguments{}
}

func (arguments *RuntimeArguments) MakeCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "dividend-ledger",
		Short: "Replays equity token actions and serves balance history and dividends.",
		Long: `
		The dividend ledger replays the actions of a tokenized equity instrument from a source feed, keeping per-account balance history by version and the dividend payouts declared against it.

		Flags:
		- "--service/-s": Activates the web service API.
		- "--report": Publishes a checkpoint of the ledger after every update.
		- "--cache": Stores snapshots of the state, speeding up restarts. Enabled by default.
		- "--writable": Accepts actions over the API.
		`,
		Run: func(cmd *cobra.Command, args []string) {
			log.Printf("Service mode: %t, report mode: %t, state cache: %t, writable: %t",
				arguments.EnableService, arguments.EnableReport, arguments.EnableStateCache, arguments.EnableWritable)
			if arguments.HeightLimit != 0 {
				log.Printf("Source height limited to %d", arguments.HeightLimit)
			}
			Execution(arguments)
		},
	}

	rootCmd.Flags().BoolVarP(&arguments.EnableService, "service", "s", false, "Enable this flag to provide API service")
	rootCmd.Flags().BoolVarP(&arguments.EnableReport, "report", "", false, "Enable this flag to publish checkpoints")
	rootCmd.Flags().BoolVarP(&arguments.EnableStateCache, "cache", "", true, "Enable this flag to cache state snapshots")
	rootCmd.Flags().BoolVarP(&arguments.EnableWritable, "writable", "", false, "Enable this flag to accept actions over the API")
	rootCmd.Flags().BoolVarP(&arguments.EnablePprof, "pprof", "", false, "Enable this flag to serve pprof endpoints")
	rootCmd.PersistentFlags().StringVarP(&arguments.ConfigFilePath, "config", "c", "config.json", "Path of the configuration file")
	rootCmd.Flags().StringVarP(&arguments.MetricAddr, "metrics", "", ":9090", "Address of the metrics endpoint")
	rootCmd.Flags().UintVarP(&arguments.HeightLimit, "height-limit", "", 0, "Stop replaying at this source height")

	rootCmd.AddCommand(arguments.makePrintCacheCmd())
	return rootCmd
}
