package console_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tacticore/internal/console"
)

func TestPrintlnAppendsNormalPlain(t *testing.T) {
	c := console.New()
	msg := c.Println("hello")
	require.Equal(t, console.Normal, msg.Severity)
	require.Equal(t, console.Plain, msg.Printer.Kind)
	require.Equal(t, 1, c.Len())
}

func TestHistoryOrderIsPreserved(t *testing.T) {
	c := console.New()
	c.Println("first")
	c.Println("second")
	hist := c.History()
	require.Equal(t, []string{"first", "second"}, []string{hist[0].Text, hist[1].Text})
}

func TestSinceReturnsOnlyNewMessages(t *testing.T) {
	c := console.New()
	c.Println("a")
	c.Println("b")
	idx := c.Len()
	c.Println("c")

	fresh := c.Since(idx)
	require.Len(t, fresh, 1)
	require.Equal(t, "c", fresh[0].Text)
}

func TestDialoguePrinterCarriesSpeaker(t *testing.T) {
	c := console.New()
	msg := c.SendMessage("hi there", console.Normal, console.DialoguePrinter("Aris"))
	require.Equal(t, console.Dialogue, msg.Printer.Kind)
	require.Equal(t, "Aris", msg.Printer.Speaker)
}

func TestSendMessageConcurrentSafe(t *testing.T) {
	c := console.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Println("concurrent")
		}()
	}
	wg.Wait()
	require.Equal(t, 50, c.Len())
}

func TestWithClockOverridesTimestamp(t *testing.T) {
	c := console.New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.WithClock(func() time.Time { return fixed })
	msg := c.Println("stamped")
	require.True(t, msg.CreatedAt.Equal(fixed))
}
