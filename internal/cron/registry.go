package cron

import (
	"context"
	"fmt"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks registered cron jobs by unique name.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs. Nil jobs
// are skipped; a duplicate name is an error.
func NewRegistry(jobs ...Job) (*Registry, error) {
	registry := &Registry{}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a job to the registry.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	if _, ok := r.Lookup(job.Name()); ok {
		return fmt.Errorf("cron job %q registered twice", job.Name())
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Lookup finds a job by name.
func (r *Registry) Lookup(name string) (Job, bool) {
	for _, job := range r.jobs {
		if job.Name() == name {
			return job, true
		}
	}
	return nil, false
}

// Names lists the registered job names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	return names
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
