package config

import "errors"

// BuiltinSetProvider wraps a ConfigProvider to include the reference
// parameter set as a virtual set named "default". A stored set of the same
// name takes precedence.
type BuiltinSetProvider struct {
	provider ConfigProvider
}

// NewBuiltinSetProvider creates a provider that includes the reference set
func NewBuiltinSetProvider(provider ConfigProvider) *BuiltinSetProvider {
	return &BuiltinSetProvider{
		provider: provider,
	}
}

// ListSets returns the stored sets plus the reference set when no stored set shadows it
func (b *BuiltinSetProvider) ListSets() ([]ParameterSet, error) {
	sets, err := b.provider.ListSets()
	if err != nil {
		return nil, err
	}

	if _, err := findSet(sets, DefaultParameterSet().Name); err == nil {
		return sets, nil
	}

	return append([]ParameterSet{DefaultParameterSet()}, sets...), nil
}

// LoadConfig delegates to the wrapped provider and adds the reference set
func (b *BuiltinSetProvider) LoadConfig() (*ConfigData, error) {
	config, err := b.provider.LoadConfig()
	if err != nil {
		return nil, err
	}

	sets, err := b.ListSets()
	if err != nil {
		return nil, err
	}
	config.ParameterSets = sets

	return config, nil
}

// GetSet checks stored sets first, then the reference set
func (b *BuiltinSetProvider) GetSet(name string) (*ParameterSet, error) {
	set, err := b.provider.GetSet(name)
	if !errors.Is(err, ErrSetNotFound) {
		return set, err
	}

	if name == DefaultParameterSet().Name {
		def := DefaultParameterSet()
		return &def, nil
	}
	return nil, ErrSetNotFound
}

// Modification methods delegate to the wrapped provider. The reference set
// itself cannot be deleted; deleting a stored "default" uncovers it again.
func (b *BuiltinSetProvider) SaveSet(set *ParameterSet) error {
	return b.provider.SaveSet(set)
}

func (b *BuiltinSetProvider) DeleteSet(name string) error {
	err := b.provider.DeleteSet(name)
	if errors.Is(err, ErrSetNotFound) && name == DefaultParameterSet().Name {
		return ErrBuiltinSet
	}
	return err
}

func (b *BuiltinSetProvider) IsReadOnly() bool {
	return b.provider.IsReadOnly()
}

func (b *BuiltinSetProvider) Close() error {
	return b.provider.Close()
}
