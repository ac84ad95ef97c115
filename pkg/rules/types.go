package rules

import (
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
)

// Supported OS values for the OS tier.
const (
	OSMacOS   = "macos"
	OSLinux   = "linux"
	OSWindows = "windows"
)

// MachineOverride adds patterns for a single machine.
type MachineOverride struct {
	Include []string `toml:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `toml:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// AppDefinition is the set of patterns for one app. Pattern lists keep their
// order and may contain duplicates.
type AppDefinition struct {
	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude" yaml:"exclude"`

	IncludeMacOS   []string `toml:"include_macos,omitempty" yaml:"include_macos,omitempty"`
	ExcludeMacOS   []string `toml:"exclude_macos,omitempty" yaml:"exclude_macos,omitempty"`
	IncludeLinux   []string `toml:"include_linux,omitempty" yaml:"include_linux,omitempty"`
	ExcludeLinux   []string `toml:"exclude_linux,omitempty" yaml:"exclude_linux,omitempty"`
	IncludeWindows []string `toml:"include_windows,omitempty" yaml:"include_windows,omitempty"`
	ExcludeWindows []string `toml:"exclude_windows,omitempty" yaml:"exclude_windows,omitempty"`

	Machines map[string]MachineOverride `toml:"machines,omitempty" yaml:"machines,omitempty"`
}

// OSPatterns returns the include and exclude lists of the OS tier. known is
// false for an OS without a tier.
func (a *AppDefinition) OSPatterns(os string) (include, exclude []string, known bool) {
	switch os {
	case OSMacOS:
		return a.IncludeMacOS, a.ExcludeMacOS, true
	case OSLinux:
		return a.IncludeLinux, a.ExcludeLinux, true
	case OSWindows:
		return a.IncludeWindows, a.ExcludeWindows, true
	}
	return nil, nil, false
}

// AddMachineExclude appends pattern to the machine's override. It returns
// false when the override already lists the pattern.
func (a *AppDefinition) AddMachineExclude(machineID, pattern string) bool {
	if a.Machines == nil {
		a.Machines = make(map[string]MachineOverride)
	}
	override := a.Machines[machineID]
	for _, existing := range override.Exclude {
		if existing == pattern {
			return false
		}
	}
	override.Exclude = append(override.Exclude, pattern)
	a.Machines[machineID] = override
	return true
}

// SyncRules maps app names to their definitions.
type SyncRules struct {
	Apps map[string]*AppDefinition `toml:"apps" yaml:"apps"`
}

// NewSyncRules returns empty rules.
func NewSyncRules() *SyncRules {
	return &SyncRules{Apps: make(map[string]*AppDefinition)}
}

// App returns the named app or an APP_NOT_FOUND error.
func (r *SyncRules) App(name string) (*AppDefinition, error) {
	app, ok := r.Apps[name]
	if !ok || app == nil {
		return nil, errors.Newf(errors.ErrAppNotFound, "app %q is not defined", name).
			WithDetail("app", name).
			WithHint("run 'drifters list' to see the defined apps")
	}
	return app, nil
}

// AddApp defines a new app. Redefining an existing app is an error.
func (r *SyncRules) AddApp(name string, app *AppDefinition) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "app name cannot be empty")
	}
	if r.Apps == nil {
		r.Apps = make(map[string]*AppDefinition)
	}
	if _, exists := r.Apps[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "app %q already exists", name).
			WithDetail("app", name)
	}
	r.Apps[name] = app
	return nil
}

// SetApp defines or replaces an app. It reports whether the app existed.
func (r *SyncRules) SetApp(name string, app *AppDefinition) bool {
	if r.Apps == nil {
		r.Apps = make(map[string]*AppDefinition)
	}
	_, existed := r.Apps[name]
	r.Apps[name] = app
	return existed
}

// AppNames returns the defined app names in sorted order.
func (r *SyncRules) AppNames() []string {
	names := make([]string, 0, len(r.Apps))
	for name := range r.Apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the apps a command works on: only the named app when name
// is set, otherwise every app.
func (r *SyncRules) Select(name string) ([]string, error) {
	if name == "" {
		return r.AppNames(), nil
	}
	if _, err := r.App(name); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// RemoveApp deletes the named app. It reports whether the app existed.
func (r *SyncRules) RemoveApp(name string) bool {
	_, ok := r.Apps[name]
	delete(r.Apps, name)
	return ok
}

// RenameApp moves the definition of oldName to newName.
func (r *SyncRules) RenameApp(oldName, newName string) error {
	app, err := r.App(oldName)
	if err != nil {
		return err
	}
	if _, exists := r.Apps[newName]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "app %q already exists", newName).
			WithDetail("app", newName)
	}
	delete(r.Apps, oldName)
	r.Apps[newName] = app
	return nil
}

// RemoveMachine drops the overrides of machineID from every app and
// returns how many apps had one.
func (r *SyncRules) RemoveMachine(machineID string) int {
	n := 0
	for _, app := range r.Apps {
		if _, ok := app.Machines[machineID]; ok {
			delete(app.Machines, machineID)
			n++
		}
	}
	return n
}

// RenameMachine moves the overrides of oldID to newID in every app and
// returns how many apps had one.
func (r *SyncRules) RenameMachine(oldID, newID string) int {
	n := 0
	for _, app := range r.Apps {
		if override, ok := app.Machines[oldID]; ok {
			delete(app.Machines, oldID)
			app.Machines[newID] = override
			n++
		}
	}
	return n
}

// MachineInfo describes a registered machine.
type MachineInfo struct {
	OS       string    `toml:"os" yaml:"os"`
	LastSync time.Time `toml:"last_sync" yaml:"last_sync,omitempty"`
}

// MachineRegistry lists the machines that joined the store.
type MachineRegistry struct {
	Machines map[string]MachineInfo `toml:"machines" yaml:"machines"`
}

// NewMachineRegistry returns an empty registry.
func NewMachineRegistry() *MachineRegistry {
	return &MachineRegistry{Machines: make(map[string]MachineInfo)}
}

// Has reports whether id is registered.
func (m *MachineRegistry) Has(id string) bool {
	_, ok := m.Machines[id]
	return ok
}

// Register records id with its OS, replacing any previous entry.
func (m *MachineRegistry) Register(id, os string, now time.Time) {
	if m.Machines == nil {
		m.Machines = make(map[string]MachineInfo)
	}
	m.Machines[id] = MachineInfo{OS: os, LastSync: now.UTC()}
}

// Touch updates the last sync time of a registered machine. Unknown machines
// are left alone.
func (m *MachineRegistry) Touch(id string, now time.Time) {
	info, ok := m.Machines[id]
	if !ok {
		return
	}
	info.LastSync = now.UTC()
	m.Machines[id] = info
}

// Remove unregisters id. It reports whether id was registered.
func (m *MachineRegistry) Remove(id string) bool {
	_, ok := m.Machines[id]
	delete(m.Machines, id)
	return ok
}

// Rename moves the entry of oldID to newID.
func (m *MachineRegistry) Rename(oldID, newID string) error {
	info, ok := m.Machines[oldID]
	if !ok {
		return errors.Newf(errors.ErrMachineNotRegistered, "machine %q is not registered", oldID).
			WithDetail("machine", oldID)
	}
	if _, taken := m.Machines[newID]; taken {
		return errors.Newf(errors.ErrAlreadyExists, "machine ID %q is already registered", newID).
			WithDetail("machine", newID)
	}
	delete(m.Machines, oldID)
	m.Machines[newID] = info
	return nil
}

// IDs returns the registered machine IDs in sorted order.
func (m *MachineRegistry) IDs() []string {
	ids := make([]string, 0, len(m.Machines))
	for id := range m.Machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateName checks an app or machine name. Names become directory names
// in the store, so they must be non-empty and free of path separators.
func ValidateName(kind, name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", kind)
	case strings.ContainsAny(name, `/\`):
		return errors.Newf(errors.ErrInvalidInput, "%s name %q cannot contain '/' or '\\'", kind, name).
			WithDetail(kind, name)
	case name == "." || name == "..":
		return errors.Newf(errors.ErrInvalidInput, "%s name %q is reserved", kind, name).
			WithDetail(kind, name)
	}
	return nil
}
