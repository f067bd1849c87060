package store

import (
	"context"

	"github.com/lifetree/lifetree/pkg/errors"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Kind      string // mongo, http or file
	Path      string // file
	MongoURI  string // mongo
	Database  string // mongo
	APIURL    string // http
	APIToken  string // http
	TrunkName string
}

// Open builds the store named by opts.Kind.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Kind {
	case KindFile:
		if opts.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file store: path is required")
		}
		return NewFileStore(opts.Path, opts.TrunkName), nil
	case KindHTTP:
		if err := errors.ValidateURL(opts.APIURL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "http store: api url")
		}
		return NewHTTPStore(opts.APIURL, opts.APIToken, opts.TrunkName), nil
	case KindMongo:
		return NewMongoStore(ctx, MongoOptions{
			URI:       opts.MongoURI,
			Database:  opts.Database,
			TrunkName: opts.TrunkName,
		})
	default:
		return nil, unknownKind(opts.Kind)
	}
}
