package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/storage"
)

// printCache writes the stored heights and, for the newest snapshot, every
// account history and payout to w.
func printCache(w io.Writer, config *Config) error {
	stateConfig, err := config.StateConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(config.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	heights, err := store.Heights()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "heights: %v\n", heights)
	if len(heights) == 0 {
		return nil
	}
	st, err := store.LoadLatest(stateConfig)
	if err != nil {
		return err
	}
	digest, err := st.DigestHex()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "height %d version %d digest %s\n", st.Height, st.Ledger.Version(), digest)
	for _, account := range st.Ledger.Accounts() {
		for _, c := range st.Ledger.Checkpoints(account) {
			fmt.Fprintf(w, "%s@%d: %s (%s)\n", account, c.Version, c.Value.Dec(), ledger.FormatUnits(c.Value, ledger.Decimals))
		}
	}
	for i, p := range st.Dividends.Payouts() {
		fmt.Fprintf(w, "payout %d: amount %s version %d claimed %s recycled %t\n",
			i, p.Amount.Dec(), p.Version, p.TotalClaimed.Dec(), p.Recycled)
	}
	return nil
}

func (arguments *RuntimeArguments) makePrintCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-cache",
		Short: "Dumps the newest cached state to __debug_state.",
		Run: func(cmd *cobra.Command, args []string) {
			config, err := LoadConfig(arguments.ConfigFilePath)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}
			file, err := os.Create("__debug_state")
			if err != nil {
				log.Fatalf("Error opening file: %v", err)
			}
			defer file.Close()
			if err := printCache(file, config); err != nil {
				log.Fatalf("Error writing to file: %v", err)
			}
		},
	}
}
