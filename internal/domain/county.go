package domain

import "fmt"

// CountyRef names a county within a state.
type CountyRef struct {
	Name  string
	State string
}

// CountyResolver translates between county codes and names. It is only used
// to build county criteria and to render names, never during matching or
// reconstruction.
type CountyResolver interface {
	// CountyCode returns the state-prefixed FIPS code of a county.
	CountyCode(name, state string) (int, error)

	// CountyName returns the county a code refers to.
	CountyName(code int) (CountyRef, error)
}

// InCounties builds a criterion on the counties attribute matching items that
// touched any of the named counties.
func InCounties(resolver CountyResolver, refs ...CountyRef) (Criterion, error) {
	codes := make([]int, 0, len(refs))
	for _, ref := range refs {
		code, err := resolver.CountyCode(ref.Name, ref.State)
		if err != nil {
			return Criterion{}, fmt.Errorf("resolve county %s, %s: %w", ref.Name, ref.State, err)
		}
		codes = append(codes, code)
	}
	return Is(codes), nil
}

// CountyNames resolves every county the track crossed, in segment order.
func (t *Track) CountyNames(resolver CountyResolver) ([]CountyRef, error) {
	codes := t.Counties()
	names := make([]CountyRef, 0, len(codes))
	for _, code := range codes {
		ref, err := resolver.CountyName(code)
		if err != nil {
			return nil, fmt.Errorf("resolve county %d: %w", code, err)
		}
		names = append(names, ref)
	}
	return names, nil
}
