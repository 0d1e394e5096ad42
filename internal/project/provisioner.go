// Package project provisions project folders and documents, loads agent
// templates, persists plans, and ranks a user's projects by proximity.
package project

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/timowlmtn/living-harmonix/internal/keypath"
	"github.com/timowlmtn/living-harmonix/pkg/errors"
	"github.com/timowlmtn/living-harmonix/pkg/types"
)

const projectDocContentType = "application/json"

// Provisioner creates and updates project folders and their documents.
type Provisioner struct {
	gw        types.Gateway
	scheme    keypath.Scheme
	templates TemplateLoader
	logger    *slog.Logger
	now       func() time.Time
}

// NewProvisioner returns a Provisioner. A nil template loader falls back to
// the store-backed loader.
func NewProvisioner(gw types.Gateway, namespace string, templates TemplateLoader, logger *slog.Logger) *Provisioner {
	scheme := keypath.NewScheme(namespace)
	if templates == nil {
		templates = NewCachingTemplateLoader(NewStoreTemplateLoader(gw, scheme), 5*time.Minute)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		gw:        gw,
		scheme:    scheme,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureProject makes the project folder and document exist, idempotently.
//
// The folder marker write is overwrite-safe. If a document already exists the
// call is a pure update: only name and updated_at change, every other field
// (template-sourced extras included) is preserved. Otherwise a new document
// is built in three fixed stages: defaults, template overlay, then identity
// reassertion so a template can never clobber id, name, timestamps, or the
// project's own prefix.
func (p *Provisioner) EnsureProject(ctx context.Context, userID, projectID, displayName, agentType string) (*types.ProjectDocument, error) {
	if err := ValidateAgentType(agentType); err != nil {
		return nil, err
	}

	root := p.scheme.ProjectRoot(userID, projectID)
	if err := p.gw.PutObject(ctx, root, nil, ""); err != nil {
		return nil, err
	}

	docKey := p.scheme.ProjectDocKey(userID, projectID)
	name := DisplayName(agentType, displayName)
	now := p.now().UTC()

	existing, err := p.gw.GetObject(ctx, docKey)
	switch {
	case err == nil:
		var doc types.ProjectDocument
		if uerr := json.Unmarshal(existing, &doc); uerr != nil {
			return nil, errors.New(errors.ErrCodeInvalidPayload, "existing project document is not valid JSON").
				WithKey(docKey).WithCause(uerr)
		}
		doc.Name = name
		doc.UpdatedAt = now
		if werr := p.writeDoc(ctx, docKey, &doc); werr != nil {
			return nil, werr
		}
		p.logger.Debug("project document updated", "key", docKey)
		return &doc, nil

	case errors.IsNotFound(err):
		doc, cerr := p.createDoc(ctx, projectID, name, root, agentType, now)
		if cerr != nil {
			return nil, cerr
		}
		if werr := p.writeDoc(ctx, docKey, doc); werr != nil {
			return nil, werr
		}
		p.logger.Info("project created", "project", projectID, "agent_type", agentType)
		return doc, nil

	default:
		return nil, err
	}
}

func (p *Provisioner) createDoc(ctx context.Context, projectID, name, root, agentType string, now time.Time) (*types.ProjectDocument, error) {
	doc := &types.ProjectDocument{}

	template, err := p.templates.Load(ctx, agentType)
	if err != nil {
		return nil, err
	}
	if template != nil {
		*doc = *template
	}

	doc.ID = projectID
	doc.Name = name
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.S3Prefix = root
	return doc, nil
}

func (p *Provisioner) writeDoc(ctx context.Context, key string, doc *types.ProjectDocument) error {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.New(errors.ErrCodeInvalidPayload, "cannot encode project document").
			WithKey(key).WithCause(err)
	}
	return p.gw.PutObject(ctx, key, body, projectDocContentType)
}

// SavePlan persists a markdown plan under the project's date folder and links
// it from the project document. A project without a document yet gets one
// created on the spot so the link has somewhere to live.
func (p *Provisioner) SavePlan(ctx context.Context, userID, projectID, dateISO, fileName string, markdown []byte) (string, error) {
	planKey := p.scheme.ProjectRoot(userID, projectID) + dateISO + "/" + fileName
	if err := p.gw.PutObject(ctx, planKey, markdown, "text/markdown"); err != nil {
		return "", err
	}

	docKey := p.scheme.ProjectDocKey(userID, projectID)
	now := p.now().UTC()

	var doc types.ProjectDocument
	body, err := p.gw.GetObject(ctx, docKey)
	switch {
	case err == nil:
		if uerr := json.Unmarshal(body, &doc); uerr != nil {
			return "", errors.New(errors.ErrCodeInvalidPayload, "existing project document is not valid JSON").
				WithKey(docKey).WithCause(uerr)
		}
	case errors.IsNotFound(err):
		doc = types.ProjectDocument{
			ID:        projectID,
			Name:      projectID,
			CreatedAt: now,
			S3Prefix:  p.scheme.ProjectRoot(userID, projectID),
		}
	default:
		return "", err
	}

	doc.PlanURL = planKey
	doc.UpdatedAt = now
	if werr := p.writeDoc(ctx, docKey, &doc); werr != nil {
		return "", werr
	}
	return planKey, nil
}
