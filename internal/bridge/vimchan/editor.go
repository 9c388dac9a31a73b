package vimchan

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/dshills/yankflash/internal/config"
	"github.com/dshills/yankflash/internal/highlight"
	"github.com/dshills/yankflash/internal/yank"
)

// RequestYanked is the request name sent by the TextYankPost autocmd.
const RequestYanked = "yanked"

// DefaultChannelVar is the Vim variable holding the job channel.
const DefaultChannelVar = "g:yankflash_channel"

var groupName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Editor implements plugin.Editor on top of a Vim channel.
type Editor struct {
	ch *Channel

	mu    sync.Mutex
	group string
}

// NewEditor creates an editor talking to Vim through ch.
func NewEditor(ch *Channel) *Editor {
	return &Editor{ch: ch, group: yank.DefaultStyle}
}

// Register installs the TextYankPost autocmd that calls back into the
// server. channelVar names the Vim variable holding the job channel.
func (e *Editor) Register(channelVar string) error {
	if channelVar == "" {
		channelVar = DefaultChannelVar
	}
	cmds := []string{
		"augroup yankflash | augroup END",
		"autocmd! yankflash",
		fmt.Sprintf("autocmd yankflash TextYankPost * call ch_evalexpr(%s, %s)", channelVar, strconv.Quote(RequestYanked)),
	}
	for _, cmd := range cmds {
		if err := e.ch.Ex(cmd); err != nil {
			return fmt.Errorf("registering autocmd: %w", err)
		}
	}
	return nil
}

// YankEvent reads v:event.
func (e *Editor) YankEvent(ctx context.Context) (yank.Event, error) {
	res, err := e.ch.Expr(ctx, "v:event")
	if err != nil {
		return yank.Event{}, err
	}
	if !res.IsObject() {
		return yank.Event{}, fmt.Errorf("v:event is %s, not a dictionary", res.Type)
	}

	ev := yank.Event{
		Operator: res.Get("operator").String(),
		ShapeTag: res.Get("regtype").String(),
	}
	for _, item := range res.Get("regcontents").Array() {
		ev.Fragments = append(ev.Fragments, item.String())
	}
	return ev, nil
}

// Cursor reads the cursor line and character column.
func (e *Editor) Cursor(ctx context.Context) (int, int, error) {
	res, err := e.ch.Expr(ctx, "[line('.'), charcol('.')]")
	if err != nil {
		return 0, 0, err
	}
	pos := res.Array()
	if len(pos) != 2 {
		return 0, 0, fmt.Errorf("unexpected cursor position %s", res.Raw)
	}
	return int(pos[0].Int()), int(pos[1].Int()), nil
}

// Line reads line n of the current buffer.
func (e *Editor) Line(ctx context.Context, n int) (string, error) {
	res, err := e.ch.Expr(ctx, fmt.Sprintf("getline(%d)", n))
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// Lookup reads the global variable backing key. v:null means unset.
func (e *Editor) Lookup(ctx context.Context, key string) (any, bool, error) {
	name := config.GlobalName(key)
	res, err := e.ch.Expr(ctx, fmt.Sprintf("get(g:, %s, v:null)", vimString(name)))
	if err != nil {
		return nil, false, err
	}
	if res.Type == gjson.Null || !res.Exists() {
		return nil, false, nil
	}
	return res.Value(), true, nil
}

// Buffer returns the current buffer number.
func (e *Editor) Buffer(ctx context.Context) (highlight.Buffer, error) {
	res, err := e.ch.Expr(ctx, "bufnr('%')")
	if err != nil {
		return 0, err
	}
	return highlight.Buffer(res.Int()), nil
}

// DefineStyle defines the highlight group and its text property type.
func (e *Editor) DefineStyle(_ context.Context, s highlight.Style) error {
	if !groupName.MatchString(s.Group) {
		return fmt.Errorf("invalid highlight group name %q", s.Group)
	}

	cmds := []string{
		fmt.Sprintf("highlight %s ctermbg=%d ctermfg=%d", s.Group, s.Background, s.Foreground),
		fmt.Sprintf("silent! call prop_type_add(%s, {'highlight': %s})", vimString(s.Group), vimString(s.Group)),
	}
	for _, cmd := range cmds {
		if err := e.ch.Ex(cmd); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.group = s.Group
	e.mu.Unlock()
	return nil
}

// Apply adds one text property per region with a single prop_add_list call.
// Character columns are converted to Vim's byte columns using the line text.
func (e *Editor) Apply(ctx context.Context, buf highlight.Buffer, regions []yank.Region) error {
	group := e.currentGroup()
	items := make([][]int, 0, len(regions))

	for _, r := range regions {
		if r.Length <= 0 {
			continue
		}
		text, err := e.bufLine(ctx, buf, r.Line)
		if err != nil {
			return err
		}
		start, end := byteCol(text, r.Column), byteCol(text, r.End())
		if end <= start {
			continue
		}
		items = append(items, []int{r.Line, start, r.Line, end})
		if r.Style != "" {
			group = r.Style
		}
	}

	if len(items) == 0 {
		return nil
	}

	props := map[string]any{"type": group, "bufnr": int(buf)}
	if _, err := e.ch.Call(ctx, "prop_add_list", props, items); err != nil {
		return err
	}
	return e.ch.Redraw(false)
}

// Clear removes the highlight properties from lines [start, end).
func (e *Editor) Clear(ctx context.Context, buf highlight.Buffer, start, end int) error {
	if end <= start {
		return nil
	}
	props := map[string]any{"type": e.currentGroup(), "bufnr": int(buf), "all": 1}
	if _, err := e.ch.Call(ctx, "prop_remove", props, start, end-1); err != nil {
		return err
	}
	return e.ch.Redraw(false)
}

func (e *Editor) currentGroup() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.group
}

// bufLine reads line n of buf, which need not be the current buffer.
func (e *Editor) bufLine(ctx context.Context, buf highlight.Buffer, n int) (string, error) {
	res, err := e.ch.Expr(ctx, fmt.Sprintf("get(getbufline(%d, %d), 0, '')", buf, n))
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// byteCol converts a 1-based character column to a 1-based byte column,
// clamped to one past the end of text.
func byteCol(text string, col int) int {
	if col <= 1 {
		return 1
	}
	offset := 0
	for i := 1; i < col && offset < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	return offset + 1
}

// vimString quotes s as a Vim single-quoted string.
func vimString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}
