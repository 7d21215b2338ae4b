package classifier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripLogPrefix(t *testing.T) {
	t.Run("Testing StripLogPrefix : should strip timestamp and level prefix", func(t *testing.T) {
		line := "2026/02/02 18:12:25  [INFO]   : mirroring images"
		assert.Equal(t, "mirroring images", StripLogPrefix(line))
	})

	t.Run("Testing StripLogPrefix : should strip prefix with ANSI color escapes", func(t *testing.T) {
		line := "\x1b[1;94m2026/02/02 18:12:25  [INFO] \x1b[0m  : mirroring images"
		assert.Equal(t, "mirroring images", StripLogPrefix(line))
	})

	t.Run("Testing StripLogPrefix : should keep message colons intact", func(t *testing.T) {
		line := "2026/02/02 18:12:25  [INFO]   : copying docker://cp.icr.io/cp/ibm-mas:9.1.8"
		assert.Equal(t, "copying docker://cp.icr.io/cp/ibm-mas:9.1.8", StripLogPrefix(line))
	})

	t.Run("Testing StripLogPrefix : should return plain lines unchanged", func(t *testing.T) {
		for _, line := range []string{
			"plain message with no prefix",
			"error: something went wrong",
			"",
		} {
			assert.Equal(t, line, StripLogPrefix(line))
		}
	})

	t.Run("Testing StripLogPrefix : should require a bracketed level before the separator", func(t *testing.T) {
		// Timestamp present, but the first ": " is part of the message.
		line := "2026/02/02 18:12:25 plain: message"
		assert.Equal(t, line, StripLogPrefix(line))
	})
}

func TestClassifyNoise(t *testing.T) {
	t.Run("Testing Classify : should flag known banner lines as noise", func(t *testing.T) {
		for _, line := range []string{
			"2026/02/02 18:12:25  [INFO]   : 👋 Hello, welcome to oc-mirror",
			"2026/02/02 18:12:25  [INFO]   : ⚙️  setting up the environment for you...",
			"WARNING: Using Digest To Pull, But Tag Only For Mirroring",
		} {
			c := Classify(line, OriginStdout)
			assert.True(t, c.IsNoise, "expected noise: %s", line)
		}
	})

	t.Run("Testing Classify : should not flag ordinary lines as noise", func(t *testing.T) {
		c := Classify("2026/02/02 18:12:25  [INFO]   : copying image 3 of 48", OriginStdout)
		assert.False(t, c.IsNoise)
	})
}

func TestClassifyProgressTotal(t *testing.T) {
	t.Run("Testing Classify : should extract the progress total with spaces", func(t *testing.T) {
		c := Classify("2026/02/02 18:12:25  [INFO]   : ✓ 48 / 48 additional images mirrored successfully", OriginStdout)
		if assert.NotNil(t, c.Progress) {
			assert.Equal(t, 48, c.Progress.Completed)
			assert.Equal(t, 48, c.Progress.Total)
		}
	})

	t.Run("Testing Classify : should extract the progress total without spaces", func(t *testing.T) {
		c := Classify("3/10 additional images mirrored successfully", OriginStderr)
		if assert.NotNil(t, c.Progress) {
			assert.Equal(t, 3, c.Progress.Completed)
			assert.Equal(t, 10, c.Progress.Total)
		}
	})

	t.Run("Testing Classify : should survive prefix stripping", func(t *testing.T) {
		// The numbers live after the prefix; stripping must not lose them.
		c := Classify("2026/02/02 18:12:25  [INFO]   : ✗ 5 / 9 additional images mirrored successfully", OriginStdout)
		if assert.NotNil(t, c.Progress) {
			assert.Equal(t, 5, c.Progress.Completed)
			assert.Equal(t, 9, c.Progress.Total)
		}
	})

	t.Run("Testing Classify : should leave Progress nil for unrelated lines", func(t *testing.T) {
		c := Classify("48 operators mirrored successfully", OriginStdout)
		assert.Nil(t, c.Progress)
	})
}

func TestClassifyItemDone(t *testing.T) {
	t.Run("Testing Classify : should detect a per-image success line", func(t *testing.T) {
		c := Classify("2026/02/02 18:12:25  [INFO]   : Success copying docker://cp.icr.io/cp/ibm-mas/admin:9.1.8 ➡️  registry.local/mas/", OriginStdout)
		assert.True(t, c.ItemDone)
	})

	t.Run("Testing Classify : should not tick on other copy chatter", func(t *testing.T) {
		c := Classify("Copying blob sha256:deadbeef done", OriginStdout)
		assert.False(t, c.ItemDone)
	})
}

func TestClassifyOrigin(t *testing.T) {
	t.Run("Testing Classify : should preserve the stream origin", func(t *testing.T) {
		assert.Equal(t, OriginStdout, Classify("a", OriginStdout).Origin)
		assert.Equal(t, OriginStderr, Classify("a", OriginStderr).Origin)
	})
}

func BenchmarkClassify(b *testing.B) {
	lines := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		lines = append(lines, fmt.Sprintf("2026/02/02 18:12:25  [INFO]   : Copying blob %d", i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(lines[i%len(lines)], OriginStdout)
	}
}
