package atmi

// Observer receives bridge lifecycle events. pkg/atmi/metrics provides a
// prometheus implementation.
type Observer interface {
	ContextBound(tok ContextToken)
	ContextUnbound(tok ContextToken)
	HandleAcquired(kind string)
	HandleReleased(kind string)
	ErrorTranslated(typeName string)
}

type nopObserver struct{}

func (nopObserver) ContextBound(ContextToken)   {}
func (nopObserver) ContextUnbound(ContextToken) {}
func (nopObserver) HandleAcquired(string)       {}
func (nopObserver) HandleReleased(string)       {}
func (nopObserver) ErrorTranslated(string)      {}
