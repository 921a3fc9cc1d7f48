package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/feed"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/pager"
	"github.com/abelbrown/moments/internal/scroll"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chromeLines is the status bar plus the help/error line.
const chromeLines = 2

// Options configures an App.
type Options struct {
	// Bus is the feed controller's bus. The App subscribes to it to repaint
	// on changes made off the event loop. May be nil.
	Bus *bus.Bus
	// NextTarget returns the feed that follows current. Target switching is
	// disabled when nil.
	NextTarget func(current string) string
	// WheelNotchDelta is the wheel delta of one mouse wheel notch.
	WheelNotchDelta float64
	// Animate enables spring-animated smooth scrolling. Without it smooth
	// scrolls jump but keep their guard window.
	Animate bool
	Context context.Context
	Now     func() time.Time
}

// App is the root Bubble Tea model.
// IMPORTANT: App holds no collections of its own. Everything it shows is read
// from the feed controller; positional state lives in the controller.
type App struct {
	ctrl       *feed.Controller
	bus        *bus.Bus
	events     <-chan bus.Event
	nextTarget func(string) string
	notch      float64
	animate    bool
	ctx        context.Context
	now        func() time.Time

	stage    *stage
	log      *eventLog
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	err      error
	status   string
	width    int
	height   int
	ready    bool
	detail   bool
	showHelp bool
	debug    bool
}

// NewApp creates an App driving ctrl. The controller's target must already
// be set.
func NewApp(ctrl *feed.Controller, opts Options) App {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WheelNotchDelta <= 0 {
		opts.WheelNotchDelta = 100
	}

	st := newStage()
	ctrl.SetLayout(scroll.Vertical, columnLayout{st: st, ctrl: ctrl})
	ctrl.SetLayout(scroll.Horizontal, rowLayout{st: st, ctrl: ctrl})

	a := App{
		ctrl:       ctrl,
		bus:        opts.Bus,
		nextTarget: opts.NextTarget,
		notch:      opts.WheelNotchDelta,
		animate:    opts.Animate,
		ctx:        opts.Context,
		now:        opts.Now,
		stage:      st,
		log:        newEventLog(),
		viewport:   viewport.New(0, 0),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StatusBarKey)),
		help:       help.New(),
		keys:       defaultKeyMap(),
	}
	if opts.Bus != nil {
		a.events = opts.Bus.Subscribe(256)
	}
	return a
}

// Init loads the first page.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.load(), a.spin(), a.waitForEvent())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.stage.width = msg.Width
		a.stage.height = max(msg.Height-chromeLines, 1)
		a.viewport.Width = a.stage.width
		a.viewport.Height = a.stage.height
		a.help.Width = msg.Width
		var cmd tea.Cmd
		if a.ctrl.Mounted() {
			cmd = a.apply(a.ctrl.Resize())
		} else {
			cmd = a.apply(a.mount())
		}
		return a, cmd

	case SlidesLoaded:
		a.stage.done()
		if errors.Is(msg.Err, pager.ErrStale) {
			return a, nil
		}
		if msg.Err != nil {
			logging.Warn("ui: slide fetch failed", "target", a.ctrl.Target(), "error", msg.Err)
		}
		cmd := a.apply(a.ctrl.Synced())
		snap := a.resnap()
		return a, tea.Batch(cmd, snap)

	case SubSlidesLoaded:
		a.stage.done()
		if errors.Is(msg.Err, pager.ErrStale) {
			return a, nil
		}
		if msg.Err != nil {
			logging.Warn("ui: sub-slide fetch failed", "slide", msg.Key, "error", msg.Err)
		}
		cmd := a.apply(a.ctrl.Synced())
		return a, cmd

	case Reacted:
		a.ctrl.ReactionDone(msg.Reaction, msg.Moment, msg.Err)
		if msg.Err != nil {
			a.err = msg.Err
		} else {
			a.status = fmt.Sprintf("reacted %s", msg.Reaction.Emoji)
		}
		a.refresh()
		return a, nil

	case Deleted:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.ctrl.Deleted(msg.ID)
		a.status = "moment deleted"
		a.detail = false
		cmd := a.apply(a.ctrl.Synced())
		snap := a.resnap()
		return a, tea.Batch(cmd, snap)

	case ScrollSettled:
		a.ctrl.Settle(msg.Cmd)
		a.refresh()
		return a, nil

	case AnimFrame:
		anim := a.stage.animator(msg.Axis)
		_, active := anim.Step()
		a.refresh()
		if !active {
			a.stage.running[msg.Axis] = false
			return a, nil
		}
		return a, frame(msg.Axis, anim.Frame())

	case BusEvent:
		a.log.push(a.now(), msg.Event)
		a.refresh()
		return a, a.waitForEvent()

	case spinner.TickMsg:
		if a.stage.pending == 0 {
			a.stage.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear any existing error on key press
	a.err = nil
	a.status = ""

	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	// Overlays swallow everything but their own close keys
	switch {
	case a.detail:
		if key.Matches(msg, a.keys.Back, a.keys.Detail) {
			a.detail = false
		}
		return a, nil
	case a.showHelp:
		if key.Matches(msg, a.keys.Back, a.keys.Help) {
			a.showHelp = false
		}
		return a, nil
	case a.debug:
		if key.Matches(msg, a.keys.Back, a.keys.Debug) {
			a.debug = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.Debug):
		a.debug = true
		return a, nil

	case key.Matches(msg, a.keys.Detail):
		if _, ok := a.ctrl.ActiveMoment(); ok {
			a.detail = true
		}
		return a, nil

	case key.Matches(msg, a.keys.React):
		m, ok := a.ctrl.ActiveMoment()
		if !ok || len(msg.Runes) == 0 {
			return a, nil
		}
		i := int(msg.Runes[0] - '1')
		if i < 0 || i >= len(feed.Reactions) {
			return a, nil
		}
		r, err := a.ctrl.React(m.ID, feed.Reactions[i])
		if err != nil {
			a.err = err
			return a, nil
		}
		a.refresh()
		return a, a.react(r)

	case key.Matches(msg, a.keys.Delete):
		m, ok := a.ctrl.ActiveMoment()
		if !ok {
			return a, nil
		}
		a.status = "deleting…"
		return a, a.deleteMoment(m.ID)

	case key.Matches(msg, a.keys.Target):
		if a.nextTarget == nil {
			return a, nil
		}
		next := a.nextTarget(a.ctrl.Target())
		if !a.ctrl.SetTarget(next) {
			return a, nil
		}
		a.stage.vertical.Jump(0)
		a.stage.horizontal.Jump(0)
		a.stage.subKey = ""
		a.refresh()
		return a, tea.Batch(a.load(), a.spin())

	case key.Matches(msg, a.keys.Refresh):
		// the story row is re-seeded once the first page lands
		a.stage.subKey = ""
		a.refresh()
		return a, tea.Batch(a.reload(), a.spin())

	case key.Matches(msg, a.keys.navigation()...):
		cmd := a.apply(a.ctrl.Key(msg.String()))
		return a, cmd
	}

	return a, nil
}

// handleMouseMsg maps wheel notches to wheel deltas and left-button drags to
// swipes.
func (a App) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.detail || a.showHelp || a.debug {
		return a, nil
	}
	now := a.now()

	var fx feed.Effects
	switch {
	case msg.Button == tea.MouseButtonWheelDown:
		fx = a.ctrl.Wheel(a.notch)
	case msg.Button == tea.MouseButtonWheelUp:
		fx = a.ctrl.Wheel(-a.notch)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		a.ctrl.Press(msg.X, msg.Y, now)
	case msg.Action == tea.MouseActionMotion && a.ctrl.Dragging():
		fx = a.ctrl.Motion(msg.X, msg.Y, now)
	case msg.Action == tea.MouseActionRelease && a.ctrl.Dragging():
		fx = a.ctrl.Release(msg.X, msg.Y, now)
	default:
		return a, nil
	}
	cmd := a.apply(fx)
	return a, cmd
}

// mount performs the initial snap once there is something to show and
// somewhere to show it.
func (a *App) mount() feed.Effects {
	if !a.ready || a.ctrl.Len() == 0 || a.ctrl.Mounted() {
		return feed.Effects{}
	}
	return a.ctrl.Mount()
}

// resnap mounts, or re-snaps when a collection change moved the index away
// from where the viewport rests.
func (a *App) resnap() tea.Cmd {
	if !a.ctrl.Mounted() {
		return a.apply(a.mount())
	}
	v := a.stage.vertical
	if v.Active() || v.Offset() == a.ctrl.Index()*a.stage.height {
		return nil
	}
	return a.apply(a.ctrl.Resize())
}

// apply runs the effects of one input: scroll commands first, then fetches.
func (a *App) apply(fx feed.Effects) tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range fx.Scroll {
		cmds = append(cmds, a.scroll(c))
	}
	a.syncSub()
	if fx.FetchMore {
		cmds = append(cmds, a.fetchMore(), a.spin())
	}
	if fx.FetchSub != "" {
		cmds = append(cmds, a.fetchSub(fx.FetchSub), a.spin())
	}
	a.refresh()
	return tea.Batch(cmds...)
}

// scroll executes one scroll command against the stage.
func (a *App) scroll(c scroll.Command) tea.Cmd {
	anim := a.stage.animator(c.Axis)
	if !c.Smooth {
		anim.Jump(c.Offset)
		a.ctrl.Settle(c)
		return nil
	}

	var cmds []tea.Cmd
	if a.animate {
		anim.Animate(c.Offset)
		if !a.stage.running[c.Axis] {
			a.stage.running[c.Axis] = true
			cmds = append(cmds, frame(c.Axis, anim.Frame()))
		}
	} else {
		anim.Jump(c.Offset)
	}
	cmds = append(cmds, settleAfter(c))
	return tea.Batch(cmds...)
}

// syncSub points the horizontal animator at the active story's row.
func (a *App) syncSub() {
	key := ""
	if s, ok := a.ctrl.Active(); ok {
		if st, ok := s.(model.StorySlide); ok {
			key = st.Key()
		}
	}
	if key == a.stage.subKey {
		return
	}
	a.stage.subKey = key
	a.stage.horizontal.Jump(a.ctrl.SubIndex(key) * a.stage.width)
}

// refresh re-renders the slide stack into the viewport.
func (a *App) refresh() {
	w, h := a.stage.width, a.stage.height
	if w <= 0 || h <= 0 {
		return
	}
	slides := a.ctrl.Slides()
	idx := a.ctrl.Index()
	now := a.now()

	cells := make([]string, len(slides))
	for i, s := range slides {
		var subs []model.Moment
		sub := 0
		if st, ok := s.(model.StorySlide); ok {
			subs = a.ctrl.SubSlides(st.Key())
			sub = a.ctrl.SubIndex(st.Key())
			if i == idx && st.Key() == a.stage.subKey {
				sub = a.stage.subPosition()
			}
		}
		cells[i] = renderSlide(s, subs, sub, w, h, i == idx, now)
	}
	a.viewport.SetContent(strings.Join(cells, "\n"))
	a.viewport.SetYOffset(a.stage.vertical.Offset())
}

func frame(axis scroll.Axis, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return AnimFrame{Axis: axis} })
}

func settleAfter(c scroll.Command) tea.Cmd {
	return tea.Tick(c.Settle, func(time.Time) tea.Msg { return ScrollSettled{Cmd: c} })
}

func (a App) spin() tea.Cmd {
	if a.stage.spinning {
		return nil
	}
	a.stage.spinning = true
	return a.spinner.Tick
}

func (a App) load() tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	a.stage.pending++
	return func() tea.Msg {
		_, err := ctrl.Load(ctx)
		return SlidesLoaded{Err: err}
	}
}

func (a App) reload() tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	a.stage.pending++
	return func() tea.Msg {
		_, err := ctrl.Refresh(ctx)
		return SlidesLoaded{Err: err}
	}
}

func (a App) fetchMore() tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	a.stage.pending++
	return func() tea.Msg {
		_, err := ctrl.FetchMore(ctx)
		return SlidesLoaded{Err: err}
	}
}

func (a App) fetchSub(slideKey string) tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	a.stage.pending++
	return func() tea.Msg {
		_, err := ctrl.FetchSubSlides(ctx, slideKey)
		return SubSlidesLoaded{Key: slideKey, Err: err}
	}
}

func (a App) react(r feed.Reaction) tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	return func() tea.Msg {
		m, err := ctrl.SendReaction(ctx, r)
		return Reacted{Reaction: r, Moment: m, Err: err}
	}
}

func (a App) deleteMoment(momentID string) tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	return func() tea.Msg {
		return Deleted{ID: momentID, Err: ctrl.Delete(ctx, momentID)}
	}
}

func (a App) waitForEvent() tea.Cmd {
	ch := a.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return BusEvent{Event: e}
	}
}

// View renders the App.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var main string
	switch {
	case a.detail:
		main = a.renderDetail()
	case a.showHelp:
		full := a.help
		full.ShowAll = true
		main = HelpStyle.Render(full.View(a.keys))
	case a.debug:
		var dropped uint64
		if a.bus != nil {
			dropped = a.bus.Dropped()
		}
		main = debugOverlay(a.log, dropped, a.now(), a.width, a.stage.height)
	case a.ctrl.Len() == 0:
		main = a.renderEmpty()
	default:
		main = a.viewport.View()
	}
	main = lipgloss.NewStyle().
		Height(a.stage.height).
		MaxHeight(a.stage.height).
		Render(main)

	var bottom string
	if a.err != nil {
		bottom = ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err))
	} else {
		bottom = HelpStyle.Render(a.help.View(a.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, a.renderStatusBar(), bottom)
}

func (a App) renderEmpty() string {
	msg := "Nothing here yet."
	if a.stage.pending > 0 {
		msg = a.spinner.View() + " Loading moments…"
	}
	return lipgloss.Place(a.width, a.stage.height, lipgloss.Center, lipgloss.Center, StatusBarText.Render(msg))
}

func (a App) renderDetail() string {
	m, ok := a.ctrl.ActiveMoment()
	if !ok {
		return ""
	}
	var story *model.Story
	if s, ok := a.ctrl.Active(); ok {
		if st, ok := s.(model.StorySlide); ok {
			story = &st.Story
		}
	}
	return renderDetail(m, story, a.width, a.stage.height)
}

// renderStatusBar renders the bottom status bar.
func (a App) renderStatusBar() string {
	var left strings.Builder
	left.WriteString(StatusBarKey.Render(a.ctrl.Target()))
	if n := a.ctrl.Len(); n > 0 {
		left.WriteString(StatusBarText.Render(fmt.Sprintf("  %d/%d", a.ctrl.Index()+1, n)))
	}
	if key := a.stage.subKey; key != "" {
		if n := len(a.ctrl.SubSlides(key)); n > 0 {
			left.WriteString(StatusBarText.Render(fmt.Sprintf(" · story %d/%d", a.ctrl.SubIndex(key)+1, n)))
		}
	}
	if st := a.ctrl.State(); st.HasFetchedOnce && !st.HasNext && a.ctrl.Len() > 0 {
		left.WriteString(StatusBarText.Render(" · end"))
	}
	if a.status != "" {
		left.WriteString(StatusBarText.Render("  " + a.status))
	}

	var right []string
	if a.stage.pending > 0 {
		right = append(right, a.spinner.View())
	}
	if m, ok := a.ctrl.ActiveMoment(); ok && m.Plays() {
		if a.ctrl.Playing() {
			right = append(right, Playing.Render("▶ playing"))
		} else {
			right = append(right, StatusBarText.Render("⏸ paused"))
		}
	}

	l := left.String()
	r := strings.Join(right, " ")
	gap := max(a.width-lipgloss.Width(l)-lipgloss.Width(r)-2, 1)
	return StatusBar.Width(a.width).Render(l + strings.Repeat(" ", gap) + r)
}

// Index returns the active slide position (for testing).
func (a App) Index() int {
	return a.ctrl.Index()
}

// SubIndex returns the active story's sub-slide position (for testing).
func (a App) SubIndex() int {
	if a.stage.subKey == "" {
		return 0
	}
	return a.ctrl.SubIndex(a.stage.subKey)
}

// Detail reports whether the detail pane is open (for testing).
func (a App) Detail() bool {
	return a.detail
}

// Err returns the error shown in the error bar (for testing).
func (a App) Err() error {
	return a.err
}
