package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestTimeLogsRequestAndJob(t *testing.T) {
	buf := captureLog(t)

	ctx := WithJobID(WithRequestID(context.Background(), "r1"), "job-9")
	var err error
	Time(ctx, "optiflow.get_status")(&err)

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "req_id=r1 job_id=job-9 op=optiflow.get_status"), line)
	assert.NotContains(t, line, "err=")
}

func TestTimeLogsError(t *testing.T) {
	buf := captureLog(t)

	err := errors.New("boom")
	Time(context.Background(), "planner.add_stop")(&err)

	line := buf.String()
	assert.Contains(t, line, "req_id= op=planner.add_stop")
	assert.NotContains(t, line, "job_id=")
	assert.Contains(t, line, "err=boom")
}
