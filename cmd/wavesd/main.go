package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lunchact/Waves/blockdiff"
	"github.com/lunchact/Waves/config"
	"github.com/lunchact/Waves/logger"
	"github.com/lunchact/Waves/mining"
	"github.com/lunchact/Waves/state"
	"github.com/lunchact/Waves/util/panics"
	"github.com/lunchact/Waves/wire"
)

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := config.Parse()
	if err != nil {
		// go-flags already printed usage errors.
		os.Exit(1)
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %s\n", err)
		os.Exit(1)
	}
	defer logger.SharedBackend().Close()

	if err := importBlocks(cfg); err != nil {
		log.Errorf("Import failed: %+v", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) error {
	level, _ := logger.LevelFromString(cfg.LogLevel)
	if err := logger.SharedBackend().AddLogFile(cfg.LogFile(), logger.LevelTrace); err != nil {
		return err
	}
	logger.SetLogLevels(level)
	return nil
}

// importBlocks replays serialized blocks from the configured file through
// the block diff engine, committing each accepted diff to the store.
func importBlocks(cfg *config.Config) error {
	if cfg.BlocksFile == "" {
		return errors.New("no blocks file given, use --blocksfile")
	}

	store, err := state.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("Failed to close the state store: %s", err)
		}
	}()

	blocksFile, err := os.Open(cfg.BlocksFile)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", cfg.BlocksFile)
	}
	defer blocksFile.Close()

	engine := blockdiff.NewEngine(cfg.NetParams,
		blockdiff.DefaultKindRegistry(cfg.NetParams), nil)

	budget := cfg.NetParams.MaxBlockComplexity
	if cfg.MaxBlockComplexity != 0 {
		budget = cfg.MaxBlockComplexity
	}

	height, err := store.Height()
	if err != nil {
		return err
	}
	var previousBlock *wire.Block
	if height > 0 {
		previousBlock, err = store.BlockAtHeight(height)
		if err != nil {
			return err
		}
	}

	log.Infof("Importing blocks from %s at height %d", cfg.BlocksFile, height)
	imported := 0
	for {
		block, err := wire.DeserializeBlock(blocksFile)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "failed to deserialize block")
		}

		snapshot, err := store.Snapshot()
		if err != nil {
			return err
		}
		diff, _, err := engine.ApplyBlock(snapshot, previousBlock, block,
			mining.NewConstraint(budget))
		snapshot.Release()
		if err != nil {
			return errors.Wrapf(err, "block %s rejected", block.ID())
		}

		if err := store.Append(diff, block); err != nil {
			return err
		}
		previousBlock = block
		imported++
		if imported%1000 == 0 {
			log.Infof("Imported %d blocks", imported)
		}
	}

	height, err = store.Height()
	if err != nil {
		return err
	}
	log.Infof("Done, imported %d blocks, chain height is now %d", imported, height)
	return nil
}
