package domain

// MediaKind classifies what a downloaded post turned out to be.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaCarousel MediaKind = "carousel"
)

// CarouselItem is a single asset inside a multi-asset post.
// An item with a non-empty VideoURL is a video even if ImageURL is also set.
type CarouselItem struct {
	ImageURL string
	VideoURL string
}

// Kind returns the resolved kind of the carousel item.
func (i CarouselItem) Kind() MediaKind {
	if i.VideoURL != "" {
		return MediaVideo
	}
	return MediaImage
}

// MediaDescriptor describes the downloaded media of a post.
// For single assets Path is the file itself; for carousels it is the
// per-post directory holding the numbered items.
type MediaDescriptor struct {
	Kind MediaKind
	Path string
}

// FetchKind tags the outcome of a platform fetch.
type FetchKind int

const (
	FetchSuccess FetchKind = iota
	FetchNotFound
	FetchLoginFailed
	FetchDownloadFailed
	FetchError
)

// FetchResult is the tagged outcome of fetch+extract+download for one post.
// Exactly one of Media (on FetchSuccess) or Err (on FetchError) carries detail;
// the other kinds are self-describing terminal states.
type FetchResult struct {
	Kind  FetchKind
	Media *MediaDescriptor
	Err   error
}

// Success builds a successful FetchResult.
func Success(media MediaDescriptor) FetchResult {
	return FetchResult{Kind: FetchSuccess, Media: &media}
}

// NotFound reports a missing, private or deleted post.
func NotFound() FetchResult {
	return FetchResult{Kind: FetchNotFound, Err: ErrPostNotFound}
}

// LoginFailed reports rejected authentication.
func LoginFailed() FetchResult {
	return FetchResult{Kind: FetchLoginFailed, Err: ErrLoginFailed}
}

// DownloadFailed reports a failed asset download; safe to retry later.
func DownloadFailed(err error) FetchResult {
	if err == nil {
		err = ErrDownloadFailed
	}
	return FetchResult{Kind: FetchDownloadFailed, Err: err}
}

// Failed reports any other terminal error.
func Failed(err error) FetchResult {
	return FetchResult{Kind: FetchError, Err: err}
}
