package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the config file whenever it is written and hands every
// valid result to onChange. Invalid edits are logged and skipped so the
// running configuration stays in place. It reports false when no config
// file was loaded and there is nothing to watch.
func (l *Loader) Watch(log *slog.Logger, onChange func(*Config)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := l.decode()
		if err != nil {
			log.Warn("Ignoring invalid config change",
				slog.String("file", e.Name),
				slog.Any("err", err))
			return
		}

		log.Info("Config reloaded", slog.String("file", e.Name))
		onChange(cfg)
	})
	l.v.WatchConfig()

	return true
}
