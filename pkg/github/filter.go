package github

// Filter is the inclusion/exclusion policy applied to owner-expanded
// repositories. Explicitly named repositories never pass through it.
type Filter struct {
	IncludePrivate   bool
	IncludeForks     bool
	IncludeDotGithub bool
}

// Exclude reports whether the repository should be dropped and why.
// Checks run in a fixed order so a repository that trips several rules
// always reports the same reason.
func (f Filter) Exclude(meta *RepoMetadata) (string, bool) {
	switch {
	case meta.Fork && !f.IncludeForks:
		return "forked repository", true
	case meta.Size == 0:
		return "empty repository", true
	case meta.Private && !f.IncludePrivate:
		return "private repository", true
	case meta.Name == ".github" && !f.IncludeDotGithub:
		return ".github repository", true
	default:
		return "", false
	}
}
