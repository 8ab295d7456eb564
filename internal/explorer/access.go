package explorer

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

// Visibility is the public access state derived from a bucket policy.
type Visibility string

const (
	VisibilityPrivate    Visibility = "private"
	VisibilityPublicRead Visibility = "public-read"
	// VisibilityCustom is any policy this tool did not write.
	VisibilityCustom Visibility = "custom"
)

const policyVersion = "2012-10-17"

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string          `json:"Effect"`
	Principal json.RawMessage `json:"Principal"`
	Action    stringList      `json:"Action"`
	Resource  stringList      `json:"Resource"`
}

// stringList accepts both "x" and ["x"], as stores normalise differently.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

func objectResource(bucket string) string {
	return "arn:aws:s3:::" + bucket + "/*"
}

// PublicReadPolicy is the document granting anonymous GetObject on every
// key of bucket.
func PublicReadPolicy(bucket string) string {
	doc := policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: json.RawMessage(`"*"`),
			Action:    stringList{"s3:GetObject"},
			Resource:  stringList{objectResource(bucket)},
		}},
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// SetBucketPublic writes the public-read policy, or removes the policy
// entirely when public is false. Removing a policy that does not exist
// succeeds.
func (e *Explorer) SetBucketPublic(ctx context.Context, sess *services.Session, bucket string, public bool) error {
	if public {
		if err := sess.Client.SetBucketPolicy(ctx, bucket, PublicReadPolicy(bucket)); err != nil {
			return err
		}
		e.log.Info().Str("bucket", bucket).Msg("bucket made public")
		return nil
	}

	err := sess.Client.DeleteBucketPolicy(ctx, bucket)
	if err != nil && errs.CodeOf(err) != "NoSuchBucketPolicy" {
		return err
	}
	if err != nil {
		e.log.Debug().Str("bucket", bucket).Msg("no policy to delete")
	}
	e.log.Info().Str("bucket", bucket).Msg("bucket made private")
	return nil
}

// BucketVisibility classifies the current bucket policy.
func (e *Explorer) BucketVisibility(ctx context.Context, sess *services.Session, bucket string) (Visibility, error) {
	raw, err := sess.Client.GetBucketPolicy(ctx, bucket)
	if errs.CodeOf(err) == "NoSuchBucketPolicy" {
		return VisibilityPrivate, nil
	}
	if err != nil {
		return "", err
	}
	return classifyPolicy(bucket, raw), nil
}

func classifyPolicy(bucket, raw string) Visibility {
	if raw == "" {
		return VisibilityPrivate
	}
	var doc policyDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return VisibilityCustom
	}
	if len(doc.Statement) != 1 {
		return VisibilityCustom
	}
	st := doc.Statement[0]
	if st.Effect != "Allow" || !anyPrincipal(st.Principal) {
		return VisibilityCustom
	}
	if len(st.Action) != 1 || st.Action[0] != "s3:GetObject" {
		return VisibilityCustom
	}
	if len(st.Resource) != 1 || st.Resource[0] != objectResource(bucket) {
		return VisibilityCustom
	}
	return VisibilityPublicRead
}

// anyPrincipal matches "*", {"AWS":"*"} and {"AWS":["*"]}.
func anyPrincipal(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "*"
	}
	var m map[string]stringList
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	aws, ok := m["AWS"]
	return ok && len(m) == 1 && len(aws) == 1 && aws[0] == "*"
}

// SetObjectPublic applies the public-read or private canned ACL to key.
func (e *Explorer) SetObjectPublic(ctx context.Context, sess *services.Session, bucket, key string, public bool) error {
	acl := services.ACLPrivate
	if public {
		acl = services.ACLPublicRead
	}
	if err := sess.Client.PutObjectACL(ctx, bucket, key, acl); err != nil {
		return err
	}
	e.log.Info().Str("bucket", bucket).Str("key", key).Str("acl", string(acl)).Msg("object ACL set")
	return nil
}

// ShareLink is a presigned GET URL. Nothing is stored; issuing a new link
// leaves older ones valid until they expire.
type ShareLink struct {
	Bucket    string        `json:"bucket" yaml:"bucket"`
	Key       string        `json:"key" yaml:"key"`
	URL       string        `json:"url" yaml:"url"`
	Expiry    time.Duration `json:"expiry" yaml:"expiry"`
	ExpiresAt time.Time     `json:"expiresAt" yaml:"expiresAt"`
}

// ClampExpiry returns the default for zero and caps at MaxShareExpiry.
func (e *Explorer) ClampExpiry(expiry time.Duration) (time.Duration, error) {
	switch {
	case expiry < 0:
		return 0, errs.New(errs.KindInvalidInput, "share link expiry must be positive")
	case expiry == 0:
		return e.shareExpiry, nil
	case expiry < time.Second:
		return time.Second, nil
	case expiry > MaxShareExpiry:
		return MaxShareExpiry, nil
	}
	return expiry, nil
}

// Share signs a GET URL for key valid for expiry.
func (e *Explorer) Share(ctx context.Context, sess *services.Session, bucket, key string, expiry time.Duration) (ShareLink, error) {
	expiry, err := e.ClampExpiry(expiry)
	if err != nil {
		return ShareLink{}, err
	}

	u, err := sess.Client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return ShareLink{}, err
	}
	return ShareLink{
		Bucket:    bucket,
		Key:       key,
		URL:       u.String(),
		Expiry:    expiry,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}
