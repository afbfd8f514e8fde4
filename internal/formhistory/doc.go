// Package formhistory wraps a history.Manager for callers that hold a single
// editable state value, such as a form.
//
// A History adds subscriber notification, functional updates and
// command dispatch on top of the Manager:
//
//	h := formhistory.New(map[string]any{"name": "", "email": ""},
//	    history.WithMaxHistory(50),
//	    history.WithDebounce(500*time.Millisecond),
//	)
//	defer h.Destroy()
//
//	sub := h.Subscribe(func(c formhistory.Change) { render(c.State) })
//	defer sub.Unsubscribe()
//
//	h.UpdateFunc(func(prev any) any { return withName(prev, "John") })
//	h.Dispatch(formhistory.CommandUndo)
//
// Field provides the same for a single typed value.
package formhistory
