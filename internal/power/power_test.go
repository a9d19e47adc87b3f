package power_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/hibernatectl/internal/errors"
	"codeberg.org/mutker/hibernatectl/internal/hal"
	"codeberg.org/mutker/hibernatectl/internal/logger"
	"codeberg.org/mutker/hibernatectl/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	m.Run()
}

// journal records every capability call in order so ordering invariants can
// be asserted across fakes.
type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

func (j *journal) index(t *testing.T, call string) int {
	t.Helper()
	for i, c := range j.calls {
		if c == call {
			return i
		}
	}
	t.Fatalf("call %q not found in journal %v", call, j.calls)

	return -1
}

func (j *journal) contains(call string) bool {
	for _, c := range j.calls {
		if c == call {
			return true
		}
	}

	return false
}

type scriptSampler struct {
	j       *journal
	script  []hal.Level
	samples int
}

func (s *scriptSampler) Sample() hal.Level {
	s.j.add("sample")
	level := hal.Low
	if s.samples < len(s.script) {
		level = s.script[s.samples]
	}
	s.samples++

	return level
}

type fakeLED struct {
	j *journal
}

func (l *fakeLED) Init(initialOn bool) error { return nil }

func (l *fakeLED) Write(on bool) error {
	if on {
		l.j.add("led_on")
	} else {
		l.j.add("led_off")
	}

	return nil
}

func (l *fakeLED) Toggle() error {
	l.j.add("led_toggle")

	return nil
}

type fakeGPIO struct {
	j *journal
}

func (g *fakeGPIO) SetDriveMode(port, pin int, mode hal.DriveMode) error {
	g.j.add("gpio_drive_mode(%d,%d,%d)", port, pin, mode)

	return nil
}

type fakeConsole struct {
	j        *journal
	messages []string
}

func (c *fakeConsole) Init() error {
	c.j.add("console_init")

	return nil
}

func (c *fakeConsole) Deinit() error {
	c.j.add("console_deinit")

	return nil
}

func (c *fakeConsole) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.messages = append(c.messages, msg)
	c.j.add("console_printf")
}

type fakePowerManager struct {
	j         *journal
	commitErr error
	source    hal.WakeSource
	commits   int
}

func (p *fakePowerManager) Hibernate(src hal.WakeSource) error {
	p.j.add("hibernate")
	p.source = src
	p.commits++

	return p.commitErr
}

type fakeClock struct {
	j      *journal
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.j.add("sleep(%s)", d)
	c.sleeps = append(c.sleeps, d)
}

type harness struct {
	journal *journal
	sampler *scriptSampler
	led     *fakeLED
	gpio    *fakeGPIO
	console *fakeConsole
	pm      *fakePowerManager
	clock   *fakeClock
}

func newHarness(script []hal.Level, commitErr error, caps hal.Capabilities) (*power.Controller, *harness) {
	j := &journal{}
	h := &harness{
		journal: j,
		sampler: &scriptSampler{j: j, script: script},
		led:     &fakeLED{j: j},
		gpio:    &fakeGPIO{j: j},
		console: &fakeConsole{j: j},
		pm:      &fakePowerManager{j: j, commitErr: commitErr},
		clock:   &fakeClock{j: j},
	}

	controller := power.NewController(power.Deps{
		Sampler: h.sampler,
		LED:     h.led,
		GPIO:    h.gpio,
		Console: h.console,
		Power:   h.pm,
		Clock:   h.clock,
		Caps:    caps,
	})

	return controller, h
}

// Scenario: two high samples then a low one. Two paced LED toggles, then the
// full hibernate sequence carrying the fixed comparator-0-high descriptor.
func TestRunBlinksThenHibernates(t *testing.T) {
	controller, h := newHarness([]hal.Level{hal.High, hal.High, hal.Low}, nil, hal.Capabilities{})

	err := controller.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrWakeRestart), "successful commit must surface as a restart request")

	assert.Equal(t, 3, h.sampler.samples, "Expected exactly three polls")
	assert.Equal(t, 1, h.pm.commits, "Expected exactly one commit")
	assert.Equal(t, hal.WakeComparator0High, h.pm.source, "Commit must carry the comparator-0-high wake descriptor")

	// Each toggle is followed by the blink delay before the next poll
	blinkSleep := fmt.Sprintf("sleep(%s)", power.BlinkPeriod)
	first := h.journal.index(t, "led_toggle")
	require.Less(t, first+1, len(h.journal.calls))
	assert.Equal(t, blinkSleep, h.journal.calls[first+1], "blink must be paced by the 500ms delay")

	toggles := 0
	for _, c := range h.journal.calls {
		if c == "led_toggle" {
			toggles++
		}
	}
	assert.Equal(t, 2, toggles, "Expected one toggle per high poll")
	assert.Equal(t, []time.Duration{power.BlinkPeriod, power.BlinkPeriod, power.PreSleepWarning}, h.clock.sleeps)
}

// The LED must be on for the full warning interval before any teardown, and
// the console must be released after the warning but before the commit.
func TestHibernateTeardownOrdering(t *testing.T) {
	controller, h := newHarness([]hal.Level{hal.Low}, nil, hal.Capabilities{})

	err := controller.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.IsCode(err, errors.ErrWakeRestart))

	warningSleep := fmt.Sprintf("sleep(%s)", power.PreSleepWarning)
	ledOn := h.journal.index(t, "led_on")
	warning := h.journal.index(t, warningSleep)
	ledOff := h.journal.index(t, "led_off")
	deinit := h.journal.index(t, "console_deinit")
	hibernate := h.journal.index(t, "hibernate")

	assert.Less(t, ledOn, warning, "LED must be on before the warning hold")
	assert.Less(t, warning, ledOff, "LED stays on for the full warning interval")
	assert.Less(t, warning, deinit, "console deinit must wait for the warning to complete")
	assert.Less(t, ledOff, deinit, "teardown begins only after the LED warning")
	assert.Less(t, deinit, hibernate, "console must be released before the commit")
}

// The high-impedance step only exists on the variant that declares it, and
// sits between the console release and the commit.
func TestHighZVariant(t *testing.T) {
	highZCall := fmt.Sprintf("gpio_drive_mode(%d,%d,%d)", hal.ConsoleBankPort, hal.ConsoleBankPin, hal.DriveHighZ)

	controller, h := newHarness([]hal.Level{hal.Low}, nil, hal.Capabilities{HighZOnSleep: true})
	err := controller.Run(context.Background())
	require.True(t, errors.IsCode(err, errors.ErrWakeRestart))

	deinit := h.journal.index(t, "console_deinit")
	highZ := h.journal.index(t, highZCall)
	hibernate := h.journal.index(t, "hibernate")
	assert.Less(t, deinit, highZ)
	assert.Less(t, highZ, hibernate)

	controller, h = newHarness([]hal.Level{hal.Low}, nil, hal.Capabilities{})
	err = controller.Run(context.Background())
	require.True(t, errors.IsCode(err, errors.ErrWakeRestart))
	assert.False(t, h.journal.contains(highZCall), "high-Z step must not run on other variants")
}

// Scenario: the commit reports failure. The console comes back first, then a
// single diagnostic, and the loop is never re-entered.
func TestCommitFailureRecovery(t *testing.T) {
	commitErr := errors.New().New(hal.ErrHibernateRejected)
	controller, h := newHarness([]hal.Level{hal.Low}, commitErr, hal.Capabilities{})

	err := controller.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrHibernateCommit))
	assert.True(t, errors.IsCode(err, hal.ErrHibernateRejected), "the platform error must stay in the chain")

	hibernate := h.journal.index(t, "hibernate")
	reinit := h.journal.index(t, "console_init")
	assert.Less(t, hibernate, reinit, "console reinit must follow the failed commit")

	diagnostics := 0
	for _, msg := range h.console.messages {
		if strings.Contains(msg, "Not entered Hibernate mode") {
			diagnostics++
		}
	}
	assert.Equal(t, 1, diagnostics, "Expected exactly one diagnostic message")

	// The diagnostic is emitted only after the console is restored
	lastPrintf := -1
	for i, c := range h.journal.calls {
		if c == "console_printf" {
			lastPrintf = i
		}
	}
	assert.Greater(t, lastPrintf, reinit, "diagnostic must not be emitted before the console reinit")

	assert.Equal(t, 1, h.sampler.samples, "execution must not return to the poll loop after a failed commit")
}

func TestCanceledContextStopsPolling(t *testing.T) {
	controller, h := newHarness([]hal.Level{hal.High}, nil, hal.Capabilities{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := controller.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, h.sampler.samples, "no polls after cancellation")
	assert.Zero(t, h.pm.commits)
}
