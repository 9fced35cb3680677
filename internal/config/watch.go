package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
)

// Reload re-reads v into the store. An invalid config is reported and the
// previous one stays in effect. The returned event is what Watch publishes.
func (s *Store) Reload(v *viper.Viper) event.ConfigReloaded {
	path := v.ConfigFileUsed()

	cfg, err := LoadFrom(v)
	if err != nil {
		if verrs, ok := err.(ValidationErrors); ok {
			return event.NewConfigReloaded(path, verrs.Strings())
		}
		return event.NewConfigReloaded(path, []string{err.Error()})
	}

	s.Set(cfg)
	return event.NewConfigReloaded(path, nil)
}

// Watch reloads the store whenever the config file of v changes on disk and
// publishes a ConfigReloaded event for each attempt. onChange, if not nil,
// runs after a valid config was applied.
//
// Viper offers no way to stop watching; the watch lasts for the process.
func (s *Store) Watch(v *viper.Viper, bus *event.Bus, logger *logging.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		ev := s.Reload(v)
		if ev.Applied() {
			logger.Info("config reloaded", "path", ev.Path)
			if onChange != nil {
				onChange(s.Get())
			}
		} else {
			logger.Warn("config reload rejected",
				"path", ev.Path,
				"problems", ev.Problems,
			)
		}
		bus.Publish(ev)
	})
	v.WatchConfig()
}
