package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// TemplateRepository stores templates as templates/<id>.json and versions as
// versions/<templateID>/<versionID>.json.
type TemplateRepository struct {
	root string
}

func (r *TemplateRepository) templatePath(id string) string {
	return filepath.Join(r.root, "templates", id+".json")
}

func (r *TemplateRepository) versionDir(templateID string) string {
	return filepath.Join(r.root, "versions", templateID)
}

func (r *TemplateRepository) versionPath(templateID, versionID string) string {
	return filepath.Join(r.versionDir(templateID), versionID+".json")
}

func (r *TemplateRepository) SaveTemplate(_ context.Context, template *models.Template) error {
	if err := writeJSON(r.templatePath(template.ID), template); err != nil {
		return &persistence.TemplateError{Op: "SaveTemplate", TemplateID: template.ID, Err: err}
	}

	return nil
}

func (r *TemplateRepository) GetTemplate(_ context.Context, id string) (*models.Template, error) {
	var template models.Template

	err := readJSON(r.templatePath(id), &template)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, &persistence.TemplateError{Op: "GetTemplate", TemplateID: id, Err: err}
	}

	return &template, nil
}

func (r *TemplateRepository) SaveVersion(_ context.Context, version *models.TemplateVersion) error {
	err := writeJSON(r.versionPath(version.TemplateID, version.ID), version)
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

// VersionsByTemplate returns all versions ordered by version number
// ascending.
func (r *TemplateRepository) VersionsByTemplate(_ context.Context, templateID string) ([]*models.TemplateVersion, error) {
	entries, err := os.ReadDir(r.versionDir(templateID))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.TemplateVersion{}, nil
		}

		return nil, &persistence.TemplateError{Op: "VersionsByTemplate", TemplateID: templateID, Err: err}
	}

	versions := make([]*models.TemplateVersion, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		var version models.TemplateVersion

		err := readJSON(filepath.Join(r.versionDir(templateID), entry.Name()), &version)
		if err != nil {
			return nil, &persistence.TemplateError{Op: "VersionsByTemplate", TemplateID: templateID, Err: err}
		}

		versions = append(versions, &version)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version < versions[j].Version
	})

	return versions, nil
}

// SetDefaultVersion flags one version as default and clears the flag on all
// others before writing, so the single-default invariant holds on disk.
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

	for _, version := range versions {
		wantDefault := version.ID == versionID
		if version.IsDefault == wantDefault {
			continue
		}

		version.IsDefault = wantDefault

		if err := r.SaveVersion(ctx, version); err != nil {
			return err
		}
	}

	return nil
}
