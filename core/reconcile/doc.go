// Package reconcile provides the convergence primitive shared by every
// access-code scope: stays, common-area bindings and room blocks.
//
// An Executor is created per scope per run. It resolves each lock to an
// authenticated provider client through a Resolver, then:
//
//   - Ensure adopts a code already on the lock when its PIN matches, and
//     otherwise creates one, unless the window has already ended.
//   - Refresh sets a known code's window unconditionally.
//   - Remove deletes a known code; a 404 from the provider counts as success.
//
// Device listings are fetched once per run and kept current as codes are
// created and removed, so two keys asking for the same PIN on one lock never
// produce two codes in the same run.
//
// Every step is recorded in a Report. With Options.DryRun set, mutations are
// recorded as planned and return ErrDryRun; callers must not write local
// state when they see it.
//
// # Usage Example
//
//	report := reconcile.NewReport(reconcile.ScopeRoom, false, time.Now())
//	exec := reconcile.NewExecutor(resolver, report, reconcile.Options{Logger: log})
//
//	out, err := exec.Ensure(ctx, lock, reconcile.Desired{Key: stay.ID, PIN: pin, Window: w})
//	if err == nil {
//	    stay.AccessCodeID = &out.CodeID
//	}
package reconcile
