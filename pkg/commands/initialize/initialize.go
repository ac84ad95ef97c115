package initialize

import (
	"context"
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
)

// InitOptions holds options for joining a store
type InitOptions struct {
	Env     *internal.Env
	RepoURL string
	// MachineID defaults to the hostname.
	MachineID string
	// Rejoin reuses a machine ID that is already registered, for a machine
	// that lost its local config.
	Rejoin bool
	// Force replaces an existing local config.
	Force bool
}

// InitResult describes the joined store
type InitResult struct {
	MachineID  string
	RepoURL    string
	ConfigFile string
	// NewStore is true when this machine created the shared files.
	NewStore  bool
	Rejoined  bool
	Committed bool
}

// Init joins this machine to the store at RepoURL: it registers the machine,
// creates empty sync rules for a new store, publishes both and writes the
// local config. On success opts.Env.Config holds the new config.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	logger := logging.GetLogger("commands.init")
	defer logging.LogOperationStart(logger, "init")()
	env := opts.Env

	if opts.RepoURL == "" {
		return nil, errors.New(errors.ErrInvalidInput, "repository URL cannot be empty")
	}

	configFile := env.Paths.ConfigFile()
	if filesystem.Exists(env.Fs, configFile) && !opts.Force {
		return nil, errors.Newf(errors.ErrAlreadyExists, "drifters is already initialized (%s)", configFile).
			WithDetail("path", configFile).
			WithHint("pass --force to re-initialize this machine")
	}

	machineID := opts.MachineID
	if machineID == "" {
		machineID = config.DetectMachineID()
	}
	if err := rules.ValidateName("machine", machineID); err != nil {
		return nil, err
	}

	cfg := config.New(machineID, opts.RepoURL)
	if env.Config != nil {
		cfg.Lock = env.Config.Lock
		cfg.PreferredEditor = env.Config.PreferredEditor
	}

	logger.Info().
		Str("machine", machineID).
		Str("remote", opts.RepoURL).
		Msg("Joining store")

	session, err := env.OpenWorkingCopy(ctx, opts.RepoURL, true)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	layout := session.Layout()

	registry, err := rules.LoadMachines(env.Fs, layout.Root)
	if err != nil {
		return nil, err
	}
	rejoined := registry.Has(machineID)
	if rejoined && !opts.Rejoin {
		return nil, errors.Newf(errors.ErrAlreadyExists, "machine ID %q is already registered in this store", machineID).
			WithDetail("machine", machineID).
			WithHint("choose another ID with --machine-id, or pass --rejoin if this is the same machine")
	}
	registry.Register(machineID, env.OS, env.Now())
	if err := rules.SaveMachines(env.Fs, layout.Root, registry); err != nil {
		return nil, err
	}

	newStore := session.Fresh() || !filesystem.Exists(env.Fs, layout.RulesPath())
	if newStore {
		logger.Info().Msg("Creating empty sync rules")
		if err := rules.SaveRules(env.Fs, layout.Root, rules.NewSyncRules()); err != nil {
			return nil, err
		}
	}

	committed, err := session.Commit(ctx, fmt.Sprintf("Initialize drifters on %s", machineID))
	if err != nil {
		return nil, err
	}

	if err := config.Save(env.Fs, configFile, cfg); err != nil {
		return nil, err
	}
	env.Config = cfg

	logger.Info().
		Str("machine", machineID).
		Bool("new_store", newStore).
		Bool("rejoined", rejoined).
		Msg("Machine initialized")

	return &InitResult{
		MachineID:  machineID,
		RepoURL:    opts.RepoURL,
		ConfigFile: configFile,
		NewStore:   newStore,
		Rejoined:   rejoined,
		Committed:  committed,
	}, nil
}
