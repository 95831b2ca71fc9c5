// Package storage writes downloaded issues to the output directory.
//
// Issues are copied from their stream in fixed-size chunks into
// <dir>/<filename>, replacing any earlier file of the same name. A failed copy
// leaves the partial file in place.
//
// The Manager also keeps an alias link (current.pdf by default) pointing at the
// newest current issue. The link target is the bare filename.
//
// Usage:
//
//	manager, err := storage.NewManager("papers", storage.WithChunkSize(32*1024))
//	if err != nil {
//	    return err
//	}
//
//	path, n, err := manager.SaveIssue(issue, issue.Filename)
//	if err != nil {
//	    return err
//	}
//	err = manager.UpdateAlias(issue.Filename)
package storage
