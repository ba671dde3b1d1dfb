package logger

import (
	"github.com/rollbar/rollbar-go"
	"github.com/sirupsen/logrus"
)

// RollbarHook gửi các entry mức error trở lên lên Rollbar
type RollbarHook struct{}

// EnableRollbar cấu hình client Rollbar và gắn hook cho mọi logger (kể cả logger tạo sau).
// token rỗng thì không làm gì.
func EnableRollbar(token, environment, codeVersion string) {
	if token == "" {
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetCodeVersion(codeVersion)

	hook := &RollbarHook{}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	rollbarHook = hook
	for _, l := range loggers {
		l.AddHook(hook)
	}
}

// FlushRollbar đợi Rollbar gửi hết các item đang chờ
func FlushRollbar() {
	rollbar.Wait()
}

func (h *RollbarHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *RollbarHook) Fire(entry *logrus.Entry) error {
	extras := make(map[string]interface{}, len(entry.Data))
	var cause error
	for k, v := range entry.Data {
		if k == filteredKey {
			continue
		}
		if err, ok := v.(error); ok && k == logrus.ErrorKey {
			cause = err
			continue
		}
		extras[k] = v
	}

	args := []interface{}{entry.Message, extras}
	if cause != nil {
		args = append(args, cause)
	}

	if entry.Level <= logrus.FatalLevel {
		rollbar.Critical(args...)
	} else {
		rollbar.Error(args...)
	}
	return nil
}
