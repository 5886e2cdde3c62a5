/*
Package errors provides semantic error types for the docstore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("document not found")
	    ErrAlreadyExists   = errors.New("document already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrConfiguration   = errors.New("invalid configuration")
	    ErrClassNotFound   = errors.New("entity class not found")
	    ErrPersistence     = errors.New("persistence failed")
	)

Usage:

	article, err := articles.Get(ctx, "123", nil)
	if err != nil {
	    if errors.IsNotFound(err) {
	        return nil, fmt.Errorf("article %s does not exist", "123")
	    }
	    return nil, err
	}

	if _, err := articles.Save(ctx, article); err != nil {
	    if errors.IsConditionFailed(err) {
	        // somebody else saved a newer version first
	    }
	    return err
	}

PersistenceError wraps the client error that caused it, so the predicates
above also match through it.
*/
package errors
