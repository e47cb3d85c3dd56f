package logrus_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/taskline/taskline/internal/log"
	loglogrus "github.com/taskline/taskline/internal/log/logrus"
)

func TestLogrusLogger(t *testing.T) {
	tests := map[string]struct {
		log    func(l log.Logger)
		expOut []string
	}{
		"Values set with WithValues should be logged.": {
			log: func(l log.Logger) {
				l.WithValues(log.Kv{"svc": "edit.Controller"}).Infof("saved task %s", "t1")
			},
			expOut: []string{`msg="saved task t1"`, "svc=edit.Controller"},
		},

		"Values set on the context should be logged.": {
			log: func(l log.Logger) {
				ctx := l.SetValuesOnCtx(context.Background(), log.Kv{"task": "t1"})
				l.WithCtxValues(ctx).Warningf("stale save")
			},
			expOut: []string{`msg="stale save"`, "task=t1", "level=warning"},
		},

		"Debug messages should be dropped on info level.": {
			log: func(l log.Logger) {
				l.Debugf("hidden")
				l.Errorf("shown")
			},
			expOut: []string{"msg=shown", "level=error"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logrus.New()
			l.Out = &buf
			l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

			test.log(loglogrus.NewLogrus(logrus.NewEntry(l)))

			out := buf.String()
			assert.NotContains(t, out, "hidden")
			for _, exp := range test.expOut {
				assert.Contains(t, out, exp)
			}
		})
	}
}
