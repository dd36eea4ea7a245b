package mailbox

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Folder is one node of the server's folder hierarchy.
type Folder struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Selectable bool      `json:"selectable"`
	Attributes []string  `json:"attributes,omitempty"`
	Children   []*Folder `json:"children,omitempty"`
}

// ListFolders returns the full folder hierarchy as reported by the server,
// assembled into a tree along the discovered delimiter. No pagination.
func (c *Client) ListFolders() ([]*Folder, error) {
	engine, err := c.session()
	if err != nil {
		return nil, err
	}

	delim, err := c.hierarchyDelim(engine)
	if err != nil {
		return nil, err
	}

	list, err := engine.List("", "*", nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	return buildFolderTree(list, delim), nil
}

// buildFolderTree assembles LIST responses into a tree. Intermediate nodes
// the server never listed explicitly are synthesized as non-selectable
// placeholders so every listed path has its full ancestry.
func buildFolderTree(list []*imap.ListData, delim rune) []*Folder {
	nodes := make(map[string]*Folder)
	var roots []*Folder

	var ensure func(path string) *Folder
	ensure = func(path string) *Folder {
		if node, ok := nodes[path]; ok {
			return node
		}

		name := path
		var parent *Folder
		if delim != 0 {
			if i := strings.LastIndex(path, string(delim)); i >= 0 {
				parent = ensure(path[:i])
				name = path[i+1:]
			}
		}

		node := &Folder{Name: name, Path: path}
		nodes[path] = node
		if parent != nil {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
		return node
	}

	for _, mb := range list {
		node := ensure(mb.Mailbox)
		node.Selectable = !hasAttr(mb.Attrs, imap.MailboxAttrNoSelect)
		node.Attributes = node.Attributes[:0]
		for _, attr := range mb.Attrs {
			node.Attributes = append(node.Attributes, string(attr))
		}
	}

	sortFolders(roots)
	return roots
}

func sortFolders(folders []*Folder) {
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Path < folders[j].Path
	})
	for _, folder := range folders {
		sortFolders(folder.Children)
	}
}

func hasAttr(attrs []imap.MailboxAttr, target imap.MailboxAttr) bool {
	for _, attr := range attrs {
		if attr == target {
			return true
		}
	}
	return false
}

// existence is the internal three-valued outcome of a folder probe. The
// public FolderExists contract collapses absent and indeterminate to false.
// The zero value is indeterminate, so an unprobed state never reads as
// present.
type existence int

const (
	existenceIndeterminate existence = iota
	existenceAbsent
	existencePresent
)

// FolderExists normalizes the path to the server delimiter and probes it
// with STATUS. A "mailbox does not exist" response is a normal false; any
// other protocol failure is logged and conservatively reported false as
// well, favoring the boolean contract over surfacing transient errors.
func (c *Client) FolderExists(path string) bool {
	engine, err := c.session()
	if err != nil {
		c.logger.Error("folder existence check failed", slog.String("path", path), slog.Any("error", err))
		return false
	}

	delim, err := c.hierarchyDelim(engine)
	if err != nil {
		c.logger.Error("folder existence check failed", slog.String("path", path), slog.Any("error", err))
		return false
	}

	folder := joinFolderPath(splitFolderPath(path), delim)
	if folder == "" {
		return false
	}

	state := existenceIndeterminate
	if err := c.locks.with(folder, func() error {
		state = c.probeFolder(engine, folder)
		return nil
	}); err != nil {
		c.logger.Error("folder existence check failed", slog.String("path", path), slog.Any("error", err))
		return false
	}
	return state == existencePresent
}

// EnsureFolder creates the folder path segment by segment, parent first.
// Already existing paths are an idempotent success. Unlike Move, failures
// here are downgraded to a logged boolean false rather than an error.
func (c *Client) EnsureFolder(path string) bool {
	engine, err := c.session()
	if err != nil {
		c.logger.Error("folder creation failed", slog.String("path", path), slog.Any("error", err))
		return false
	}

	delim, err := c.hierarchyDelim(engine)
	if err != nil {
		c.logger.Error("folder creation failed", slog.String("path", path), slog.Any("error", err))
		return false
	}

	segments := splitFolderPath(path)
	if len(segments) == 0 {
		c.logger.Warn("folder creation skipped for empty path", slog.String("path", path))
		return false
	}
	folder := joinFolderPath(segments, delim)

	created := false
	if err := c.locks.with(folder, func() error {
		created = c.ensureFolderLocked(engine, segments, delim)
		return nil
	}); err != nil {
		c.logger.Error("folder creation failed", slog.String("path", path), slog.Any("error", err))
		return false
	}
	return created
}

func (c *Client) ensureFolderLocked(engine *imapclient.Client, segments []string, delim rune) bool {
	folder := joinFolderPath(segments, delim)
	if c.probeFolder(engine, folder) == existencePresent {
		return true
	}

	// Walk upward to the deepest existing ancestor, then create every
	// missing segment downward so each parent exists before its child.
	start := 0
	for i := len(segments) - 1; i >= 1; i-- {
		if c.probeFolder(engine, joinFolderPath(segments[:i], delim)) == existencePresent {
			start = i
			break
		}
	}

	for i := start; i < len(segments); i++ {
		name := joinFolderPath(segments[:i+1], delim)
		if err := engine.Create(name, nil).Wait(); err != nil {
			if isAlreadyExistsErr(err) {
				continue
			}
			c.logger.Error("folder creation failed", slog.String("folder", name), slog.Any("error", err))
			return false
		}
		c.logger.Debug("folder created", slog.String("folder", name))
	}
	return true
}

func (c *Client) probeFolder(engine *imapclient.Client, folder string) existence {
	status, err := engine.Status(folder, &imap.StatusOptions{NumMessages: true}).Wait()
	if err != nil {
		if isNonExistentErr(err) {
			return existenceAbsent
		}
		c.logger.Warn("folder status probe failed", slog.String("folder", folder), slog.Any("error", err))
		return existenceIndeterminate
	}
	if status == nil {
		return existenceAbsent
	}
	return existencePresent
}

func isNonExistentErr(err error) bool {
	var imapErr *imap.Error
	if !errors.As(err, &imapErr) {
		return false
	}
	return imapErr.Code == imap.ResponseCodeNonExistent || imapErr.Code == imap.ResponseCodeTryCreate
}

func isAlreadyExistsErr(err error) bool {
	var imapErr *imap.Error
	if !errors.As(err, &imapErr) {
		return false
	}
	return imapErr.Code == imap.ResponseCodeAlreadyExists
}
