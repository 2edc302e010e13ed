/*
Package publish uploads generated artifacts to S3 so hardware builds elsewhere can fetch them.
*/
package publish

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// Conf configuration for the publisher.
type Conf struct {
	Region string
	Bucket string
	// Prefix is prepended to every object key.
	Prefix string
	// Root is the local directory object keys are made relative to.
	Root string
}

// S3 interface to allow mocking of real calls to AWS, cut down to the methods we use.
type S3 interface {
	PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

// Publisher uploads files.
type Publisher interface {
	Publish(files []string) error
}

type publisher struct {
	Conf
	s3 S3
}

// New creates an S3 publisher.
func New(conf Conf) (Publisher, error) {
	if conf.Bucket == "" {
		return nil, errors.New("unable to create publisher: missing bucket")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(conf.Region)})
	if err != nil {
		return nil, fmt.Errorf("unable to create aws session: %w", err)
	}
	log.Infof("Publishing to s3://%s/%s in %s", conf.Bucket, conf.Prefix, conf.Region)
	return &publisher{Conf: conf, s3: s3.New(sess)}, nil
}

// Publish uploads every file, keyed by its path relative to Root. All files are
// attempted even if some fail.
func (p *publisher) Publish(files []string) error {
	var errs *multierror.Error
	for _, file := range files {
		if err := p.upload(file); err != nil {
			log.WithFields(log.Fields{"err": err, "file": file}).Error("Unable to publish file")
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (p *publisher) upload(file string) error {
	key, err := p.key(file)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", file, err)
	}
	defer f.Close()

	_, err = p.s3.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("unable to upload %s to s3://%s/%s: %w", file, p.Bucket, key, err)
	}
	log.Debugf("Uploaded %s to s3://%s/%s", file, p.Bucket, key)
	return nil
}

func (p *publisher) key(file string) (string, error) {
	rel := filepath.Base(file)
	if p.Root != "" {
		var err error
		if rel, err = filepath.Rel(p.Root, file); err != nil {
			return "", fmt.Errorf("unable to key %s: %w", file, err)
		}
	}
	return path.Join(p.Prefix, filepath.ToSlash(rel)), nil
}
