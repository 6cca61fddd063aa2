package domain

// SnapshotStore holds the single current snapshot of the tracked user.
type SnapshotStore interface {
	// Get returns the current snapshot, or false if none has been published.
	Get() (Snapshot, bool)

	// Set replaces the stored snapshot and notifies subscribers synchronously.
	Set(next Snapshot)

	// Update atomically applies fn to the current value. When fn returns false the
	// store is left untouched and subscribers are not notified.
	Update(fn func(current Snapshot, ok bool) (Snapshot, bool))

	// Subscribe registers fn to be called after each change. Subscribers must not
	// write to the store. The returned function removes the subscription.
	Subscribe(fn func(Snapshot)) (unsubscribe func())

	// Clear discards the stored snapshot.
	Clear()
}
