package upload

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var policyDocument []byte

// Policy is the rule set a candidate must satisfy to be accepted.
type Policy struct {
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`
	AcceptExtensions []string `yaml:"accept_extensions"`
	MaxSizeBytes     int64    `yaml:"max_size_bytes"`
}

var (
	defaultPolicy     Policy
	defaultPolicyErr  error
	defaultPolicyOnce sync.Once
)

// DefaultPolicy returns the policy compiled into the binary.
// It panics if the embedded document is malformed, which can only happen at build time.
func DefaultPolicy() Policy {
	defaultPolicyOnce.Do(func() {
		defaultPolicy, defaultPolicyErr = ParsePolicy(policyDocument)
	})
	if defaultPolicyErr != nil {
		panic(defaultPolicyErr)
	}
	return defaultPolicy.clone()
}

// ParsePolicy decodes and checks a YAML policy document.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if len(p.AllowedMimeTypes) == 0 {
		return Policy{}, fmt.Errorf("%w: no allowed mime types", ErrInvalidPolicy)
	}
	if p.MaxSizeBytes <= 0 {
		return Policy{}, fmt.Errorf("%w: max_size_bytes must be positive, got %d", ErrInvalidPolicy, p.MaxSizeBytes)
	}
	return p, nil
}

// Allows reports whether a single candidate passes both the type and size check.
// A negative size can only come from a forged descriptor and is never allowed.
func (p Policy) Allows(c FileCandidate) bool {
	return slices.Contains(p.AllowedMimeTypes, c.MimeType) &&
		c.SizeBytes >= 0 && c.SizeBytes <= p.MaxSizeBytes
}

// Accept renders the picker accept attribute, e.g. ".jpeg, .png".
func (p Policy) Accept() string {
	return strings.Join(p.AcceptExtensions, ", ")
}

// MaxSize returns the size limit in human-readable binary units, e.g. "5MiB".
func (p Policy) MaxSize() string {
	return units.BytesSize(float64(p.MaxSizeBytes))
}

func (p Policy) clone() Policy {
	return Policy{
		AllowedMimeTypes: slices.Clone(p.AllowedMimeTypes),
		AcceptExtensions: slices.Clone(p.AcceptExtensions),
		MaxSizeBytes:     p.MaxSizeBytes,
	}
}
