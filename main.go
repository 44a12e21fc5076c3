package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/apis"
	"github.com/RiemaLabs/dividend-ledger/checkpoint"
	"github.com/RiemaLabs/dividend-ledger/checkpoint/aws_s3"
	"github.com/RiemaLabs/dividend-ledger/checkpoint/da"
	"github.com/RiemaLabs/dividend-ledger/internal/metrics"
	"github.com/RiemaLabs/dividend-ledger/ledger/getter"
	"github.com/RiemaLabs/dividend-ledger/ledger/state"
	"github.com/RiemaLabs/dividend-ledger/storage"
)

var (
	version = "latest"
	gitHash = "unknown"
)

func latestHeight(g getter.ActionGetter, arguments *RuntimeArguments) (uint, error) {
	h, err := g.GetLatestHeight()
	if err != nil {
		return 0, err
	}
	if arguments.HeightLimit != 0 && h > arguments.HeightLimit {
		h = arguments.HeightLimit
	}
	return h, nil
}

// storeState snapshots st and evicts snapshots older than keep heights.
func storeState(store *storage.Store, st *state.State, keep uint) {
	if store == nil {
		return
	}
	var evict uint
	if st.Height > keep {
		evict = st.Height - keep
	}
	if err := store.StoreState(st, evict); err != nil {
		log.Printf("Failed to store the cache at height: %d, err: %v", st.Height, err)
	}
}

func CatchupStage(g getter.ActionGetter, arguments *RuntimeArguments, config *Config, store *storage.Store, latest uint) (*state.State, error) {
	metrics.Stage.Set(metrics.StageCatchup)

	stateConfig, err := config.StateConfig()
	if err != nil {
		return nil, err
	}
	st, err := storage.LoadState(store, stateConfig)
	if err != nil {
		return nil, err
	}
	if st.Height > latest {
		return nil, errors.Errorf("stored state at height %d is ahead of the source at %d", st.Height, latest)
	}
	log.Printf("Fast catchup to the latest height! From %d to %d", st.Height, latest)

	// Create a channel to listen for SIGINT (Ctrl+C) signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	defer signal.Stop(sigChan)

	for i := st.Height + 1; i <= latest; i++ {
		select {
		case <-sigChan:
			log.Printf("Saving cache file. Please don't force exit.")
			storeState(store, st, config.Storage.Keep)
			os.Exit(0)
		default:
			actions, err := g.GetActions(i)
			if err != nil {
				return nil, errors.Wrapf(err, "actions at height %d", i)
			}
			st.Apply(i, actions)
			if config.Storage.Interval != 0 && i%config.Storage.Interval == 0 {
				log.Printf("Heights: %d / %d", i, latest)
				if arguments.EnableStateCache {
					storeState(store, st, config.Storage.Keep)
				}
			}
		}
	}
	if arguments.EnableStateCache {
		storeState(store, st, config.Storage.Keep)
	}
	return st, nil
}

func uploadCheckpoint(config *Config, c *checkpoint.Checkpoint) error {
	timeout := time.Duration(config.Report.Timeout) * time.Millisecond
	switch config.Report.Method {
	case "S3":
		s3cfg := config.Report.S3
		return aws_s3.UploadCheckpointByS3(c, s3cfg.AccessKey, s3cfg.SecretKey, s3cfg.Region, s3cfg.Bucket, timeout)
	case "DA":
		dacfg := config.Report.Da
		return da.UploadCheckpointByDA(c, dacfg.RPC, dacfg.AuthToken, dacfg.NamespaceID, dacfg.SubmitTimeout)
	default:
		return errors.Errorf("unknown report method %q", config.Report.Method)
	}
}

// publish uploads the checkpoint of st unless it was already uploaded.
func publish(config *Config, st *state.State, history checkpoint.UploadHistory) error {
	st.RLock()
	c, err := checkpoint.NewCheckpoint(checkpoint.IndexerIdentification{
		URL:     config.Service.URL,
		Name:    config.Service.Name,
		Version: version,
	}, st)
	height := st.Height
	st.RUnlock()
	if err != nil {
		return err
	}

	key := c.ObjectKey()
	if history[height][key] {
		return nil
	}
	log.Printf("Uploading the checkpoint by %s at height: %s", config.Report.Method, c.Height)
	err = uploadCheckpoint(config, &c)
	checkpoint.Record(history, c, key, err == nil)
	if err != nil {
		return errors.Wrapf(err, "checkpoint at height %s", c.Height)
	}
	log.Printf("Succeed to upload the checkpoint at height: %s", c.Height)
	return nil
}

// serviceTick applies new source heights and publishes the result.
func serviceTick(g getter.ActionGetter, arguments *RuntimeArguments, config *Config, st *state.State, store *storage.Store, history checkpoint.UploadHistory) error {
	latest, err := latestHeight(g, arguments)
	if err != nil {
		return errors.Wrap(err, "failed to get the latest height")
	}

	st.RLock()
	curHeight := st.Height
	st.RUnlock()

	if curHeight < latest {
		metrics.Stage.Set(metrics.StageUpdating)
		err := st.Update(g, latest)
		metrics.Stage.Set(metrics.StageServing)
		if err != nil {
			return errors.Wrap(err, "failed to update the state")
		}
		if arguments.EnableStateCache {
			st.RLock()
			storeState(store, st, config.Storage.Keep)
			st.RUnlock()
		}
	}

	if arguments.EnableReport {
		if err := publish(config, st, history); err != nil {
			log.Printf("Unable to upload the checkpoint due to: %v", err)
		}
	}
	return nil
}

func ServiceStage(g getter.ActionGetter, arguments *RuntimeArguments, config *Config, st *state.State, store *storage.Store) {
	metrics.Stage.Set(metrics.StageServing)

	// Create a channel to listen for SIGINT (Ctrl+C) signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)

	history := make(checkpoint.UploadHistory)

	if arguments.EnableService {
		svc, err := apis.NewService(st, arguments.EnableWritable, config.Service.CacheSize)
		if err != nil {
			log.Fatalf("Failed to create the API service: %v", err)
		}
		log.Printf("Providing API service at: %s", config.Service.Addr)
		go apis.StartService(svc, config.Service.Addr, arguments.EnablePprof)
	}

	interval := config.Source.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	for {
		select {
		case <-sigChan:
			if arguments.EnableStateCache {
				log.Printf("Saving cache file. Please don't force exit.")
				st.RLock()
				storeState(store, st, config.Storage.Keep)
				st.RUnlock()
			}
			os.Exit(0)
		default:
			if err := serviceTick(g, arguments, config, st, store, history); err != nil {
				log.Fatalf("%v", err)
			}
			log.Debugf("Listening for new actions, current height: %d", st.Height)
			time.Sleep(interval)
		}
	}
}

func Execution(arguments *RuntimeArguments) {
	go metrics.ListenAndServe(arguments.MetricAddr)
	metrics.Version.WithLabelValues(version).Set(1)
	metrics.Stage.Set(metrics.StageInitializing)

	config, err := LoadConfig(arguments.ConfigFilePath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatalf("Failed to parse log level: %v", err)
	}
	log.SetLevel(level)
	log.WithFields(log.Fields{"version": version, "git": gitHash}).Info("Starting dividend ledger")

	if arguments.EnableReport && config.Report.Method == "DA" && !da.IsValidNamespaceID(config.Report.Da.NamespaceID) {
		log.Fatalf("Invalid namespace ID %q, at most %d bytes", config.Report.Da.NamespaceID, da.MaxNamespaceID)
	}

	g, err := config.NewGetter()
	if err != nil {
		log.Fatalf("Failed to initialize the action getter: %v", err)
	}

	var store *storage.Store
	if arguments.EnableStateCache {
		store, err = storage.Open(config.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open the state cache: %v", err)
		}
		defer store.Close()
	}

	latest, err := latestHeight(g, arguments)
	if err != nil {
		log.Fatalf("Failed to get the latest height: %v", err)
	}

	st, err := CatchupStage(g, arguments, config, store, latest)
	if err != nil {
		log.Fatalf("Failed to catchup the latest state: %v", err)
	}

	ServiceStage(g, arguments, config, st, store)
}

func main() {
	arguments := NewRuntimeArguments()
	rootCmd := arguments.MakeCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute: %v", err)
	}
}
