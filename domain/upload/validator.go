package upload

// Validate returns the candidates allowed by the policy, in their original
// order. An empty result means the whole batch was rejected.
func Validate(candidates []FileCandidate, policy Policy) []FileCandidate {
	accepted := make([]FileCandidate, 0, len(candidates))
	for _, c := range candidates {
		if policy.Allows(c) {
			accepted = append(accepted, c)
		}
	}
	return accepted
}
