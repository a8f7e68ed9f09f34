package errors

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// ClassifyDB converts a persistence failure into a typed error. Unique
// violations become conflicts, foreign key and check violations become
// validation errors, everything else is a dependency failure. Errors that
// are already typed pass through unchanged.
func ClassifyDB(err error, message string) error {
	if err == nil {
		return nil
	}
	if As(err) != nil {
		return err
	}
	failure := dbFailure(err)
	if failure == nil {
		return Wrap(CodeDependency, err, message)
	}
	switch failure.kind {
	case constraintUnique:
		return Wrap(CodeConflict, err, message)
	case constraintForeignKey, constraintCheck:
		return Wrap(CodeValidation, err, message)
	}
	return Wrap(CodeDependency, err, message)
}
