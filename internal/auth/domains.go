package auth

import "strings"

// DomainPolicy restricts sign-in to institutional email domains.
type DomainPolicy struct {
	domains map[string]struct{}
}

// NewDomainPolicy builds a policy from a list of domains such as
// "college.edu". Entries are trimmed, lower-cased and stripped of a leading
// "@".
func NewDomainPolicy(domains []string) DomainPolicy {
	p := DomainPolicy{domains: map[string]struct{}{}}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			p.domains[d] = struct{}{}
		}
	}
	return p
}

// Open reports whether the policy allows every domain, which is the case when
// no domain is configured.
func (p DomainPolicy) Open() bool { return len(p.domains) == 0 }

// Allowed reports whether email belongs to an allowed domain. The comparison
// is case-insensitive and exact: subdomains are not implied.
func (p DomainPolicy) Allowed(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if p.Open() {
		return true
	}
	_, ok := p.domains[strings.ToLower(email[at+1:])]
	return ok
}
