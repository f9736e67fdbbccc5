package list

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/daedalusboard/daedalus/internal/tui/util"
	"github.com/daedalusboard/daedalus/internal/virtual"
	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

type Item interface {
	util.Model
	ID() string
	SetSize(width, height int) tea.Cmd
}

// Focusable items can be selected.
type Focusable interface {
	Focus() tea.Cmd
	Blur() tea.Cmd
	IsFocused() bool
}

// Keyed items describe everything their view depends on. Their cached view
// is reused for as long as the digest of that key does not change.
type Keyed interface {
	RenderKey() string
}

type List[T Item] interface {
	util.Model
	SetSize(width, height int) tea.Cmd
	GetSize() (int, int)
	Focus() tea.Cmd
	Blur() tea.Cmd
	IsFocused() bool

	// Just change state
	MoveUp(int) tea.Cmd
	MoveDown(int) tea.Cmd
	GoToTop() tea.Cmd
	GoToBottom() tea.Cmd
	SelectItemAbove() tea.Cmd
	SelectItemBelow() tea.Cmd
	SetItems([]T) tea.Cmd
	SetSelected(string) tea.Cmd
	SelectedItem() *T
	Items() []T
	UpdateItem(string, T) tea.Cmd
	DeleteItem(string) tea.Cmd
	PrependItem(T) tea.Cmd
	AppendItem(T) tea.Cmd

	KeyMap() KeyMap
	// ResetHeights forgets the measured heights and cached views of every
	// item, for when all of them changed layout. The next render measures
	// the mounted items again.
	ResetHeights()
	// Window is the range of items mounted by the last render.
	Window() virtual.Range
	// Offset is the scroll offset in rows.
	Offset() int
	// VirtualHeight is the height in rows of the whole list.
	VirtualHeight() int
}

const (
	ItemNotFound              = -1
	ViewportDefaultScrollSize = 2

	// DefaultEstimatedHeight is the height in rows assumed for items that
	// were never rendered.
	DefaultEstimatedHeight = 1

	// render and measure at most this many times per update
	maxRenderPasses = 4
	frameInterval   = time.Second / 60
)

// FrameMsg is delivered once per display frame while scroll input is
// pending for the list that scheduled it.
type FrameMsg struct {
	listID string
}

type confOptions struct {
	width, height int
	gap           int
	// if you are at the last item and go down it will wrap to the top
	wrap        bool
	keyMap      KeyMap
	selectedID  string
	focused     bool
	enableMouse bool
	engineOpts  []virtual.Option
}

type cachedView struct {
	digest uint64
	view   string
}

type list[T Item] struct {
	*confOptions

	id     string
	engine *virtual.Engine[string]
	scroll virtual.Coalescer[int]

	offset        int
	selectedIndex int
	movingByItem  bool

	items     []T
	indexMap  map[string]int
	viewCache map[string]cachedView

	// views rendered by the last pass, read back by the measurement step
	mounted      map[string]string
	mountedRange virtual.Range
	mountedTop   int

	rendered string
}

type ListOption func(*confOptions)

// WithSize sets the size of the list.
func WithSize(width, height int) ListOption {
	return func(l *confOptions) {
		l.width = width
		l.height = height
	}
}

// WithGap sets the gap between items in the list.
func WithGap(gap int) ListOption {
	return func(l *confOptions) {
		l.gap = max(gap, 0)
	}
}

// WithSelectedItem sets the initially selected item in the list by ID.
func WithSelectedItem(id string) ListOption {
	return func(l *confOptions) {
		l.selectedID = id
	}
}

func WithKeyMap(keyMap KeyMap) ListOption {
	return func(l *confOptions) {
		l.keyMap = keyMap
	}
}

func WithWrapNavigation() ListOption {
	return func(l *confOptions) {
		l.wrap = true
	}
}

func WithFocus(focus bool) ListOption {
	return func(l *confOptions) {
		l.focused = focus
	}
}

func WithEnableMouse() ListOption {
	return func(l *confOptions) {
		l.enableMouse = true
	}
}

// WithEngineOptions configures the virtualization engine, e.g. the height
// estimate used for items that were never rendered.
func WithEngineOptions(opts ...virtual.Option) ListOption {
	return func(l *confOptions) {
		l.engineOpts = append(l.engineOpts, opts...)
	}
}

func New[T Item](items []T, opts ...ListOption) List[T] {
	l := &list[T]{
		confOptions: &confOptions{
			keyMap:     DefaultKeyMap(),
			focused:    true,
			engineOpts: []virtual.Option{virtual.WithEstimatedHeight(DefaultEstimatedHeight)},
		},
		id:            uuid.NewString(),
		selectedIndex: ItemNotFound,
		viewCache:     make(map[string]cachedView),
		mounted:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(l.confOptions)
	}
	l.engine = virtual.New[string](l.engineOpts...)
	l.engine.SetViewport(0, float64(l.height))
	l.setItems(items)
	if inx, ok := l.indexMap[l.selectedID]; ok {
		l.selectedIndex = inx
	}
	return l
}

// Init implements List.
func (l *list[T]) Init() tea.Cmd {
	// Ensure we have width and height
	if l.width <= 0 || l.height <= 0 {
		return nil
	}

	var cmds []tea.Cmd
	for _, item := range l.items {
		if cmd := item.SetSize(l.width, l.height); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, l.render())
	return tea.Batch(cmds...)
}

// Update implements List.
func (l *list[T]) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if msg.listID != l.id {
			return l, nil
		}
		offset, ok := l.scroll.Flush()
		if !ok {
			return l, nil
		}
		return l, l.scrollTo(offset)
	case tea.MouseWheelMsg:
		if l.enableMouse {
			return l, l.handleMouseWheel(msg)
		}
		return l, nil
	case tea.KeyPressMsg:
		if l.focused {
			switch {
			case key.Matches(msg, l.keyMap.NextCard):
				return l, l.SelectItemBelow()
			case key.Matches(msg, l.keyMap.PrevCard):
				return l, l.SelectItemAbove()
			case key.Matches(msg, l.keyMap.ScrollDown):
				return l, l.queueScroll(1)
			case key.Matches(msg, l.keyMap.ScrollUp):
				return l, l.queueScroll(-1)
			case key.Matches(msg, l.keyMap.HalfPageDown):
				return l, l.queueScroll(l.height / 2)
			case key.Matches(msg, l.keyMap.HalfPageUp):
				return l, l.queueScroll(-l.height / 2)
			case key.Matches(msg, l.keyMap.PageDown):
				return l, l.queueScroll(l.height)
			case key.Matches(msg, l.keyMap.PageUp):
				return l, l.queueScroll(-l.height)
			case key.Matches(msg, l.keyMap.LastCard):
				return l, l.GoToBottom()
			case key.Matches(msg, l.keyMap.FirstCard):
				return l, l.GoToTop()
			}
			s := l.SelectedItem()
			if s == nil {
				return l, nil
			}
			item := *s
			var cmds []tea.Cmd
			updated, cmd := item.Update(msg)
			cmds = append(cmds, cmd)
			if u, ok := updated.(T); ok {
				cmds = append(cmds, l.UpdateItem(u.ID(), u))
			}
			return l, tea.Batch(cmds...)
		}
	}
	return l, nil
}

func (l *list[T]) handleMouseWheel(msg tea.MouseWheelMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseWheelDown:
		return l.queueScroll(ViewportDefaultScrollSize)
	case tea.MouseWheelUp:
		return l.queueScroll(-ViewportDefaultScrollSize)
	}
	return nil
}

// queueScroll moves the pending scroll target by delta rows. Only the first
// call of a frame schedules a FrameMsg; later calls within the same frame
// just move the target.
func (l *list[T]) queueScroll(delta int) tea.Cmd {
	target := l.offset
	if pending, ok := l.scroll.Peek(); ok {
		target = pending
	}
	target = l.clampOffset(target + delta)
	if !l.scroll.Push(target) {
		return nil
	}
	id := l.id
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return FrameMsg{listID: id}
	})
}

// View implements List.
func (l *list[T]) View() string {
	if l.height <= 0 || l.width <= 0 {
		return ""
	}
	return l.rendered
}

func (l *list[T]) clampOffset(offset int) int {
	return int(l.engine.ClampOffset(float64(offset)))
}

// measureHeight reports the row count of a view mounted by the last render,
// gap included.
func (l *list[T]) measureHeight(id string) (float64, bool) {
	view, ok := l.mounted[id]
	if !ok {
		return 0, false
	}
	return float64(lipgloss.Height(view) + l.gap), true
}

func (l *list[T]) render() tea.Cmd {
	return l.renderWithScrollToSelection(true)
}

// renderWithScrollToSelection mounts the items of the current window, reads
// their real heights back into the engine and repeats while heights change,
// so that the final window and spacer agree with what was drawn.
func (l *list[T]) renderWithScrollToSelection(scrollToSelection bool) tea.Cmd {
	if l.width <= 0 || l.height <= 0 {
		return nil
	}
	if len(l.items) == 0 {
		l.offset = 0
		l.engine.SetViewport(0, float64(l.height))
		clear(l.mounted)
		l.mountedRange = virtual.Range{}
		l.rendered = ""
		return nil
	}
	l.setDefaultSelected()

	var focusChangeCmd tea.Cmd
	if l.focused {
		focusChangeCmd = l.focusSelectedItem()
	} else {
		focusChangeCmd = l.blurSelectedItem()
	}

	measure := virtual.MeasurerFunc[string](l.measureHeight)
	for range maxRenderPasses {
		// Scroll to selected item BEFORE rendering if focused and requested
		if l.focused && scrollToSelection {
			l.scrollToSelection()
		}
		l.offset = l.clampOffset(l.offset)
		l.engine.SetViewport(float64(l.offset), float64(l.height))
		l.mount(l.engine.Range())

		res := l.engine.Measure(measure)
		if res.Pruned > 0 || len(l.viewCache) > len(l.items) {
			l.pruneViewCache()
		}
		if res.Changed == 0 {
			break
		}
	}
	l.movingByItem = false
	l.offset = l.clampOffset(l.offset)
	l.rendered = l.compose()
	return focusChangeCmd
}

func (l *list[T]) mount(rng virtual.Range) {
	clear(l.mounted)
	l.mountedRange = rng
	l.mountedTop = int(l.engine.TopOffset())
	for _, item := range l.items[rng.Start:rng.End] {
		l.mounted[item.ID()] = l.viewOf(item)
	}
}

// compose stacks the mounted views and crops them to the viewport. The
// first mounted line sits at mountedTop in list coordinates.
func (l *list[T]) compose() string {
	var lines []string
	for _, item := range l.items[l.mountedRange.Start:l.mountedRange.End] {
		lines = append(lines, strings.Split(l.mounted[item.ID()], "\n")...)
		for range l.gap {
			lines = append(lines, "")
		}
	}

	skip := util.Clamp(l.offset-l.mountedTop, 0, len(lines))
	lines = lines[skip:]
	if len(lines) > l.height {
		lines = lines[:l.height]
	}

	// For content that fits entirely in viewport, don't pad with empty lines
	if l.VirtualHeight() > l.height || l.offset > 0 {
		for len(lines) < l.height {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func (l *list[T]) viewOf(item T) string {
	id := item.ID()
	digest := l.digest(item)
	if cached, ok := l.viewCache[id]; ok && cached.digest == digest {
		return cached.view
	}
	view := item.View()
	l.viewCache[id] = cachedView{digest: digest, view: view}
	return view
}

// digest hashes the render inputs of keyed items. Other items report 0 and
// rely on explicit invalidation.
func (l *list[T]) digest(item T) uint64 {
	k, ok := any(item).(Keyed)
	if !ok {
		return 0
	}
	focused := false
	if f, ok := any(item).(Focusable); ok {
		focused = f.IsFocused()
	}
	return xxh3.HashString(strconv.Itoa(l.width) + "\x00" + strconv.FormatBool(focused) + "\x00" + k.RenderKey())
}

func (l *list[T]) pruneViewCache() {
	for id := range l.viewCache {
		if _, ok := l.indexMap[id]; !ok {
			delete(l.viewCache, id)
		}
	}
}

func (l *list[T]) setDefaultSelected() {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.items) {
		l.selectFirstItem()
	}
}

func (l *list[T]) scrollToSelection() {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.items) {
		return
	}

	start := int(l.engine.OffsetOf(l.selectedIndex))
	end := int(l.engine.OffsetOf(l.selectedIndex + 1))
	viewStart, viewEnd := l.offset, l.offset+l.height

	// item bigger or equal to the viewport - show from start
	if end-start >= l.height {
		if start > viewStart || end <= viewStart || l.movingByItem {
			l.offset = start
		}
		return
	}

	if !l.movingByItem && end > viewStart && start < viewEnd {
		// partially visible is enough when not moving by item
		return
	}

	switch {
	case start < viewStart:
		l.offset = start
	case end > viewEnd:
		l.offset = end - l.height
	}
}

// changeSelectionWhenScrolling moves the selection into the viewport when
// scrolling took the selected item out of view.
func (l *list[T]) changeSelectionWhenScrolling() {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.items) {
		return
	}
	start := int(l.engine.OffsetOf(l.selectedIndex))
	end := int(l.engine.OffsetOf(l.selectedIndex + 1))
	viewStart, viewEnd := l.offset, l.offset+l.height
	if end > viewStart && start < viewEnd {
		return
	}

	if end <= viewStart {
		// select the first item in the viewport
		top := l.engine.IndexAt(float64(viewStart))
		if inx := l.firstSelectableItemBelow(top - 1); inx != ItemNotFound {
			l.selectedIndex = inx
		}
		return
	}
	bottom := min(l.engine.IndexAt(float64(viewEnd-1)), len(l.items)-1)
	if inx := l.firstSelectableItemAbove(bottom + 1); inx != ItemNotFound {
		l.selectedIndex = inx
	}
}

func (l *list[T]) selectFirstItem() {
	inx := l.firstSelectableItemBelow(-1)
	if inx != ItemNotFound {
		l.selectedIndex = inx
	}
}

func (l *list[T]) selectLastItem() {
	inx := l.firstSelectableItemAbove(len(l.items))
	if inx != ItemNotFound {
		l.selectedIndex = inx
	}
}

func (l *list[T]) firstSelectableItemAbove(inx int) int {
	for i := inx - 1; i >= 0; i-- {
		if _, ok := any(l.items[i]).(Focusable); ok {
			return i
		}
	}
	if inx == 0 && l.wrap {
		return l.firstSelectableItemAbove(len(l.items))
	}
	return ItemNotFound
}

func (l *list[T]) firstSelectableItemBelow(inx int) int {
	itemsLen := len(l.items)
	for i := inx + 1; i < itemsLen; i++ {
		if _, ok := any(l.items[i]).(Focusable); ok {
			return i
		}
	}
	if inx == itemsLen-1 && l.wrap {
		return l.firstSelectableItemBelow(-1)
	}
	return ItemNotFound
}

func (l *list[T]) focusSelectedItem() tea.Cmd {
	if l.selectedIndex < 0 || !l.focused {
		return nil
	}
	var cmds []tea.Cmd
	for inx, item := range l.items {
		if f, ok := any(item).(Focusable); ok {
			if inx == l.selectedIndex && !f.IsFocused() {
				cmds = append(cmds, f.Focus())
				delete(l.viewCache, item.ID())
			} else if inx != l.selectedIndex && f.IsFocused() {
				cmds = append(cmds, f.Blur())
				delete(l.viewCache, item.ID())
			}
		}
	}
	return tea.Batch(cmds...)
}

func (l *list[T]) blurSelectedItem() tea.Cmd {
	if l.selectedIndex < 0 || l.focused {
		return nil
	}
	var cmds []tea.Cmd
	for _, item := range l.items {
		if f, ok := any(item).(Focusable); ok && f.IsFocused() {
			cmds = append(cmds, f.Blur())
			delete(l.viewCache, item.ID())
		}
	}
	return tea.Batch(cmds...)
}

// setItems replaces the item sequence and hands the new ids to the engine,
// which rebuilds its index right away.
func (l *list[T]) setItems(items []T) {
	l.items = slices.Clone(items)
	l.indexMap = make(map[string]int, len(l.items))
	ids := make([]string, len(l.items))
	for inx, item := range l.items {
		l.indexMap[item.ID()] = inx
		ids[inx] = item.ID()
	}
	l.engine.SetItems(ids)
}

// AppendItem implements List.
func (l *list[T]) AppendItem(item T) tea.Cmd {
	cmds := []tea.Cmd{item.Init()}
	l.setItems(append(l.items, item))
	if l.width > 0 && l.height > 0 {
		cmds = append(cmds, item.SetSize(l.width, l.height))
	}
	cmds = append(cmds, l.renderWithScrollToSelection(false))
	return tea.Sequence(cmds...)
}

// PrependItem implements List.
func (l *list[T]) PrependItem(item T) tea.Cmd {
	cmds := []tea.Cmd{item.Init()}
	l.setItems(append([]T{item}, l.items...))
	if l.width > 0 && l.height > 0 {
		cmds = append(cmds, item.SetSize(l.width, l.height))
	}
	if l.selectedIndex >= 0 {
		l.selectedIndex++
	}
	if l.offset > 0 {
		// keep the same content in view
		l.offset += int(l.engine.HeightOf(item.ID()))
	}
	cmds = append(cmds, l.renderWithScrollToSelection(false))
	return tea.Batch(cmds...)
}

// Blur implements List.
func (l *list[T]) Blur() tea.Cmd {
	l.focused = false
	return l.render()
}

// DeleteItem implements List.
func (l *list[T]) DeleteItem(id string) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}

	// Check if we're deleting the selected item
	if l.selectedIndex == inx {
		// Adjust selection
		if inx > 0 {
			l.selectedIndex = inx - 1
		} else if len(l.items) > 1 {
			l.selectedIndex = 0 // Will be valid after deletion
		} else {
			l.selectedIndex = ItemNotFound // No items left
		}
	} else if l.selectedIndex > inx {
		// Adjust index if selected item is after deleted item
		l.selectedIndex--
	}

	l.setItems(slices.Delete(slices.Clone(l.items), inx, inx+1))
	delete(l.viewCache, id)
	return l.renderWithScrollToSelection(false)
}

// Focus implements List.
func (l *list[T]) Focus() tea.Cmd {
	l.focused = true
	return l.render()
}

// GetSize implements List.
func (l *list[T]) GetSize() (int, int) {
	return l.width, l.height
}

// GoToBottom implements List.
func (l *list[T]) GoToBottom() tea.Cmd {
	l.selectedIndex = ItemNotFound
	l.selectLastItem()
	l.offset = l.VirtualHeight()
	l.movingByItem = true
	return l.render()
}

// GoToTop implements List.
func (l *list[T]) GoToTop() tea.Cmd {
	l.offset = 0
	l.selectedIndex = ItemNotFound
	l.selectFirstItem()
	return l.render()
}

// IsFocused implements List.
func (l *list[T]) IsFocused() bool {
	return l.focused
}

// Items implements List.
func (l *list[T]) Items() []T {
	return slices.Clone(l.items)
}

// ResetHeights implements List.
func (l *list[T]) ResetHeights() {
	clear(l.viewCache)
	l.engine.ResetHeights()
}

// KeyMap implements List.
func (l *list[T]) KeyMap() KeyMap {
	return l.keyMap
}

// Window implements List.
func (l *list[T]) Window() virtual.Range {
	return l.mountedRange
}

// Offset implements List.
func (l *list[T]) Offset() int {
	return l.offset
}

// VirtualHeight implements List.
func (l *list[T]) VirtualHeight() int {
	return int(l.engine.TotalHeight())
}

// scrollTo applies a new scroll offset and keeps the selection in view.
func (l *list[T]) scrollTo(offset int) tea.Cmd {
	offset = l.clampOffset(offset)
	if offset == l.offset {
		return nil
	}
	l.offset = offset
	l.changeSelectionWhenScrolling()
	return l.renderWithScrollToSelection(false)
}

// MoveDown implements List.
func (l *list[T]) MoveDown(n int) tea.Cmd {
	return l.scrollTo(l.offset + n)
}

// MoveUp implements List.
func (l *list[T]) MoveUp(n int) tea.Cmd {
	return l.scrollTo(l.offset - n)
}

// SelectItemAbove implements List.
func (l *list[T]) SelectItemAbove() tea.Cmd {
	if l.selectedIndex < 0 {
		return nil
	}

	newIndex := l.firstSelectableItemAbove(l.selectedIndex)
	if newIndex == ItemNotFound {
		// no item above
		return nil
	}
	l.selectedIndex = newIndex
	l.movingByItem = true
	return l.render()
}

// SelectItemBelow implements List.
func (l *list[T]) SelectItemBelow() tea.Cmd {
	if l.selectedIndex < 0 {
		return nil
	}

	newIndex := l.firstSelectableItemBelow(l.selectedIndex)
	if newIndex == ItemNotFound {
		// no item below
		return nil
	}
	l.selectedIndex = newIndex
	l.movingByItem = true
	return l.render()
}

// SelectedItem implements List.
func (l *list[T]) SelectedItem() *T {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.items) {
		return nil
	}
	item := l.items[l.selectedIndex]
	return &item
}

// SelectedItemID returns the ID of the currently selected item (for testing).
func (l *list[T]) SelectedItemID() string {
	if l.selectedIndex < 0 || l.selectedIndex >= len(l.items) {
		return ""
	}
	return l.items[l.selectedIndex].ID()
}

// SetItems implements List. The selection follows its item when that item is
// still present and the scroll offset is kept, clamped to the new content.
func (l *list[T]) SetItems(items []T) tea.Cmd {
	selectedID := l.SelectedItemID()
	l.setItems(items)

	var cmds []tea.Cmd
	for _, item := range l.items {
		cmds = append(cmds, item.Init())
		if l.width > 0 && l.height > 0 {
			cmds = append(cmds, item.SetSize(l.width, l.height))
		}
	}

	l.selectedIndex = ItemNotFound
	if inx, ok := l.indexMap[selectedID]; ok {
		l.selectedIndex = inx
	}
	cmds = append(cmds, l.renderWithScrollToSelection(false))
	return tea.Batch(cmds...)
}

// SetSelected implements List.
func (l *list[T]) SetSelected(id string) tea.Cmd {
	inx, ok := l.indexMap[id]
	if ok {
		l.selectedIndex = inx
	} else {
		l.selectedIndex = ItemNotFound
	}
	l.movingByItem = true
	return l.render()
}

// SetSize implements List.
func (l *list[T]) SetSize(width int, height int) tea.Cmd {
	oldWidth := l.width
	l.width = width
	l.height = height
	l.engine.SetViewport(float64(l.offset), float64(height))

	var cmds []tea.Cmd
	if oldWidth != width {
		// wrapping changes with the width; items are measured again as they
		// get mounted
		l.ResetHeights()
		for _, item := range l.items {
			cmds = append(cmds, item.SetSize(width, height))
		}
	}
	cmds = append(cmds, l.render())
	return tea.Batch(cmds...)
}

// UpdateItem implements List.
func (l *list[T]) UpdateItem(id string, item T) tea.Cmd {
	inx, ok := l.indexMap[id]
	if !ok {
		return nil
	}
	l.items[inx] = item
	delete(l.viewCache, id)
	var cmd tea.Cmd
	if l.width > 0 && l.height > 0 {
		cmd = item.SetSize(l.width, l.height)
	}
	return tea.Batch(cmd, l.renderWithScrollToSelection(false))
}
