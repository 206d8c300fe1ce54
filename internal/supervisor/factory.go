package supervisor

import "github.com/loykin/launchr/internal/metrics"

// Create validates cfg and returns a NotRunning handle for it. Exactly one of
// cb.OnSuccess and cb.OnFailure is invoked, mirroring the returned pair.
// The config is copied; later changes by the caller have no effect.
func (s *Supervisor) Create(cfg *Config, cb Callbacks) (*Handle, error) {
	if err := cfg.check(); err != nil {
		name := ""
		if cfg != nil {
			name = cfg.clone().Name
		}
		s.fail(nil, cb, name, err)
		return nil, err
	}

	h := newHandle(cfg.clone(), cb)
	s.log.Debug("handle created", "handle", h.id, "name", h.name, "path", h.path)
	metrics.SetCurrentState(h.name, NotRunning.String(), StateNames())
	if cb.OnStateUpdate != nil {
		cb.OnStateUpdate(h, NotRunning)
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(h)
	}
	return h, nil
}
