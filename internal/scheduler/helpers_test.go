package scheduler

import (
	"github.com/sandeepkv93/visionary/internal/settings"
	"github.com/sandeepkv93/visionary/internal/storage"
)

func settingRecord(value string) storage.Setting {
	return storage.Setting{Key: settings.ReminderKey, Value: value}
}
