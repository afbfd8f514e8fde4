// Package filebind keeps a state file and a formhistory.History in sync.
//
// Edits saved to the file by any program are decoded and fed to the History
// as updates, so bursts of saves are debounced into single snapshots. When
// the History moves by undo, redo or jump, the resulting state is written
// back to the file. JSON, YAML and TOML files are supported, chosen by
// extension.
//
//	b, err := filebind.Bind(ctx, h, "form.yaml", filebind.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
package filebind
