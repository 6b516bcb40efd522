package redis

import (
	"context"
	"encoding/json"
	"sort"

	rd "github.com/redis/go-redis/v9"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// TemplateRepository keeps templates in the "mailblast:templates" hash and
// each template's versions in a per-template hash.
type TemplateRepository struct {
	client rd.UniversalClient
}

func templatesKey() string {
	return key("templates")
}

func versionsKey(templateID string) string {
	return key("template_versions", templateID)
}

func (r *TemplateRepository) SaveTemplate(ctx context.Context, template *models.Template) error {
	payload, err := json.Marshal(template)
	if err != nil {
		return &persistence.TemplateError{Op: "SaveTemplate", TemplateID: template.ID, Err: err}
	}

	if err := r.client.HSet(ctx, templatesKey(), template.ID, string(payload)).Err(); err != nil {
		return &persistence.TemplateError{Op: "SaveTemplate", TemplateID: template.ID, Err: err}
	}

	return nil
}

func (r *TemplateRepository) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	payload, err := r.client.HGet(ctx, templatesKey(), id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, nil
		}

		return nil, &persistence.TemplateError{Op: "GetTemplate", TemplateID: id, Err: err}
	}

	var template models.Template

	if err := json.Unmarshal([]byte(payload), &template); err != nil {
		return nil, &persistence.TemplateError{Op: "GetTemplate", TemplateID: id, Err: err}
	}

	return &template, nil
}

func (r *TemplateRepository) SaveVersion(ctx context.Context, version *models.TemplateVersion) error {
	payload, err := json.Marshal(version)
	if err != nil {
		return &persistence.TemplateError{
			Op:         "SaveVersion",
			TemplateID: version.TemplateID,
			VersionID:  version.ID,
			Err:        err,
		}
	}

	err = r.client.HSet(ctx, versionsKey(version.TemplateID), version.ID, string(payload)).Err()
	if err != nil {
		return &persistence.TemplateError{
			Op:         "SaveVersion",
			TemplateID: version.TemplateID,
			VersionID:  version.ID,
			Err:        err,
		}
	}

	return nil
}

func (r *TemplateRepository) VersionsByTemplate(ctx context.Context, templateID string) ([]*models.TemplateVersion, error) {
	raw, err := r.client.HGetAll(ctx, versionsKey(templateID)).Result()
	if err != nil {
		return nil, &persistence.TemplateError{Op: "VersionsByTemplate", TemplateID: templateID, Err: err}
	}

	versions := make([]*models.TemplateVersion, 0, len(raw))

	for _, payload := range raw {
		var version models.TemplateVersion

		if err := json.Unmarshal([]byte(payload), &version); err != nil {
			return nil, &persistence.TemplateError{Op: "VersionsByTemplate", TemplateID: templateID, Err: err}
		}

		versions = append(versions, &version)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version < versions[j].Version
	})

	return versions, nil
}

// SetDefaultVersion rewrites the version hash in a transaction so a reader
// never observes two defaults.
func (r *TemplateRepository) SetDefaultVersion(ctx context.Context, templateID, versionID string) error {
	versions, err := r.VersionsByTemplate(ctx, templateID)
	if err != nil {
		return err
	}

	var target *models.TemplateVersion

	for _, version := range versions {
		if version.ID == versionID {
			target = version

			break
		}
	}

	if target == nil {
		return &persistence.TemplateError{
			Op:         "SetDefaultVersion",
			TemplateID: templateID,
			VersionID:  versionID,
			Err:        persistence.ErrVersionNotFound,
		}
	}

	pipe := r.client.TxPipeline()

	for _, version := range versions {
		version.IsDefault = version.ID == versionID

		payload, err := json.Marshal(version)
		if err != nil {
			return &persistence.TemplateError{
				Op:         "SetDefaultVersion",
				TemplateID: templateID,
				VersionID:  version.ID,
				Err:        err,
			}
		}

		pipe.HSet(ctx, versionsKey(templateID), version.ID, string(payload))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.TemplateError{
			Op:         "SetDefaultVersion",
			TemplateID: templateID,
			VersionID:  versionID,
			Err:        err,
		}
	}

	return nil
}
