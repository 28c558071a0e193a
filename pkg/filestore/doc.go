// Package filestore provides a session.Store keeping one JSON file per
// session in a local directory.
//
// A file's modification time marks the start of its current lifetime, so
// keeping a session alive costs a single os.Chtimes. Writes go through a
// temporary file and a rename, so readers never observe partial records.
// Expired files are invisible to reads and removed by FlushExpired.
//
//	store, err := filestore.New("/var/lib/sessiond", 30*time.Minute)
//	if err != nil {
//	    return err
//	}
//	go session.NewSweeper(store, time.Minute).Run(ctx)
package filestore
