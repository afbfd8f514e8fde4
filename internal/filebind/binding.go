package filebind

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/formhistory/internal/engine/diff"
	"github.com/dshills/formhistory/internal/engine/history"
	"github.com/dshills/formhistory/internal/formhistory"
)

// historyMeta labels updates that came from the file.
var historyMeta = history.Metadata{Description: "file edit", Tags: []string{"file"}}

// Options configures a Binding.
type Options struct {
	// Codec overrides the codec chosen from the file extension.
	Codec Codec

	// Logger receives sync diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// OnError is called for read, decode and write failures that happen
	// after Bind returned.
	OnError func(err error)
}

// Binding is an active file sync. Call Close to stop it.
type Binding struct {
	history *formhistory.History
	path    string
	codec   Codec
	logger  *slog.Logger
	onError func(error)

	watcher *fsnotify.Watcher
	sub     *formhistory.Subscription

	mu          sync.Mutex
	lastWritten []byte

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	stopOnce  sync.Once
	stopErr   error
}

// ReadState decodes the state stored at path.
func ReadState(path string, codec Codec) (any, error) {
	if codec == nil {
		c, err := CodecForPath(path)
		if err != nil {
			return nil, err
		}
		codec = c
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return state, nil
}

// Bind starts syncing path with h. A missing file is created from the
// current state; an existing file that differs from it is applied as an
// update. The binding stops, releasing its watcher, when ctx is done or
// Close is called.
func Bind(ctx context.Context, h *formhistory.History, path string, opts Options) (*Binding, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	codec := opts.Codec
	if codec == nil {
		if codec, err = CodecForPath(abs); err != nil {
			return nil, err
		}
	}

	b := &Binding{
		history: h,
		path:    abs,
		codec:   codec,
		logger:  opts.Logger,
		onError: opts.OnError,
		done:    make(chan struct{}),
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With("file", abs)

	if err := b.initialSync(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Editors often replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	b.watcher = w

	b.sub = h.Subscribe(b.onChange)

	b.wg.Add(1)
	go b.loop(ctx)

	return b, nil
}

// Path returns the absolute path of the bound file.
func (b *Binding) Path() string {
	return b.path
}

func (b *Binding) initialSync() error {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return b.write(b.history.State())
	}
	if err != nil {
		return err
	}

	state, err := b.codec.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", b.path, err)
	}
	b.apply(state)
	return nil
}

func (b *Binding) loop(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			b.stop()
			return
		case <-b.done:
			return
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != b.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				b.reload()
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.report(fmt.Errorf("watch: %w", err))
		}
	}
}

// reload reads the file after an external change.
func (b *Binding) reload() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			b.report(err)
		}
		return
	}

	// A truncate-then-write save shows up as an empty file first.
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}

	b.mu.Lock()
	own := bytes.Equal(data, b.lastWritten)
	b.mu.Unlock()
	if own {
		return
	}

	state, err := b.codec.Decode(data)
	if err != nil {
		// Editors may save in several steps; the next event brings the rest.
		b.report(fmt.Errorf("decoding %s: %w", b.path, err))
		return
	}
	b.apply(state)
}

func (b *Binding) apply(state any) {
	if diff.Equal(state, b.history.Manager().Committed()) {
		return
	}
	b.logger.Debug("file changed")
	b.history.Update(state, historyMeta)
}

func (b *Binding) onChange(c formhistory.Change) {
	switch c.Type {
	case formhistory.ChangeUndo, formhistory.ChangeRedo, formhistory.ChangeJump:
		if err := b.write(c.State); err != nil {
			b.report(err)
		}
	}
}

// write replaces the file atomically with the encoded state.
func (b *Binding) write(state any) error {
	data, err := b.codec.Encode(state)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}

	b.lastWritten = data
	b.logger.Debug("state written")
	return nil
}

func (b *Binding) report(err error) {
	b.logger.Warn("file sync failed", "error", err)
	if b.onError != nil {
		b.onError(err)
	}
}

// Close stops watching and detaches from the History. It is safe to call
// more than once.
func (b *Binding) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.wg.Wait()
		b.closeErr = b.stop()
	})
	return b.closeErr
}

// stop detaches from the history and closes the watcher.
func (b *Binding) stop() error {
	b.stopOnce.Do(func() {
		b.sub.Unsubscribe()
		b.stopErr = b.watcher.Close()
	})
	return b.stopErr
}
