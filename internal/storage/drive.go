package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveClient implements ObjectStorage on a Google Drive folder. Key segments map to
// nested folders under the root folder.
type DriveClient struct {
	srv    *drive.Service
	rootID string

	mu      sync.Mutex
	folders map[string]string
}

func NewDriveClient(ctx context.Context, credentialsJSON, rootFolderID string) (*DriveClient, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("drive credentials must be provided")
	}

	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	if rootFolderID == "" {
		rootFolderID = "root"
	}

	return &DriveClient{
		srv:     srv,
		rootID:  rootFolderID,
		folders: map[string]string{"": rootFolderID},
	}, nil
}

// UploadObject stores data as the file named by the last key segment, replacing a file
// of the same name in that folder.
func (c *DriveClient) UploadObject(ctx context.Context, key string, data []byte) error {
	dir, name := path.Split(strings.Trim(key, "/"))
	parentID, err := c.ensureFolder(ctx, strings.Trim(dir, "/"))
	if err != nil {
		return err
	}

	existing, err := c.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", parentID, escapeQuery(name))).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to look up %s: %w", key, err)
	}

	media := bytes.NewReader(data)
	if len(existing.Files) > 0 {
		_, err = c.srv.Files.Update(existing.Files[0].Id, &drive.File{}).
			Media(media).
			Context(ctx).
			Do()
	} else {
		_, err = c.srv.Files.Create(&drive.File{
			Name:     name,
			MimeType: contentTypeFor(name),
			Parents:  []string{parentID},
		}).
			Media(media).
			Context(ctx).
			Do()
	}
	if err != nil {
		return fmt.Errorf("unable to upload %s: %w", key, err)
	}
	return nil
}

// ensureFolder resolves a slash separated folder path below the root, creating
// missing folders on the way.
func (c *DriveClient) ensureFolder(ctx context.Context, dir string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.folders[dir]; ok {
		return id, nil
	}

	currentID := c.rootID
	walked := ""
	for _, folder := range strings.Split(dir, "/") {
		if folder == "" {
			continue
		}
		walked = path.Join(walked, folder)
		if id, ok := c.folders[walked]; ok {
			currentID = id
			continue
		}

		result, err := c.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				currentID, escapeQuery(folder), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) > 0 {
			currentID = result.Files[0].Id
		} else {
			created, err := c.srv.Files.Create(&drive.File{
				Name:     folder,
				MimeType: folderMimeType,
				Parents:  []string{currentID},
			}).Fields("id").Context(ctx).Do()
			if err != nil {
				return "", fmt.Errorf("error creating folder %s: %w", folder, err)
			}
			currentID = created.Id
		}
		c.folders[walked] = currentID
	}

	return currentID, nil
}

// escapeQuery escapes a literal for use inside a Drive query string.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
