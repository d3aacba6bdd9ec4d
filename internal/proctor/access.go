package proctor

// Validator decides whether a connection attempt for a session hash from a
// given caller IP may proceed. Lookup only, no side effects; capacity is the
// registry's concern.
type Validator struct {
    store Store
}

func NewValidator(store Store) *Validator {
    return &Validator{store: store}
}

// Authorize validates eligibility and, when the policy enforces IP control,
// the caller address against the allow-list. Returns the session and the
// policy snapshot in force so the caller can admit under the same snapshot.
func (v *Validator) Authorize(hash, remoteIP string) (*SessionRef, error) {
    sess, err := v.store.SessionByHash(hash)
    if err != nil {
        return nil, err
    }
    if !CanConnect(sess.State) {
        return nil, &NotEligibleError{State: sess.State}
    }
    policy, err := v.store.PolicyForExam(sess.ExamInstanceIDRef)
    if err != nil {
        return nil, err
    }
    if policy.IPControlEnabled {
        allowed := false
        for _, entry := range policy.AllowedIPs {
            if MatchEntry(remoteIP, entry) {
                allowed = true
                break
            }
        }
        if !allowed {
            return nil, ErrIPNotAllowed
        }
    }
    return &SessionRef{Session: sess, Policy: policy}, nil
}
