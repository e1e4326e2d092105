// Package event 将众筹池事件异步分发给各个处理器
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/logger"
	"github.com/blues/smartfunding/internal/metrics"
	"github.com/panjf2000/ants/v2"
)

// Processor 事件处理器
type Processor interface {
	Process(ctx context.Context, evt funding.Event) error
	GetName() string
}

// Dispatcher 事件分发器。Publish 只入队不阻塞，
// 事件按入队顺序逐个分发，同一事件的各处理器在协程池中并发执行
type Dispatcher struct {
	pool       *ants.Pool
	processors []Processor
	ctx        context.Context
	cancel     context.CancelFunc

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []funding.Event
	pending int // 已入队但尚未处理完的事件数
	closed  bool
	started bool
	done    chan struct{}
}

// NewDispatcher 创建分发器，workers 为协程池大小
func NewDispatcher(workers int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		pool:   pool,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	return d, nil
}

// Register 注册处理器，必须在 Start 之前调用
func (d *Dispatcher) Register(p Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processors = append(d.processors, p)
	logger.Info("Registered event processor: %s", p.GetName())
}

// Start 启动分发循环
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.loop()
}

// Publish 实现 funding.EventSink 接口
func (d *Dispatcher) Publish(evt funding.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		logger.Warn("Dispatcher closed, dropping event %s #%d", evt.Kind, evt.Seq)
		return
	}
	d.queue = append(d.queue, evt)
	d.pending++
	d.cond.Broadcast()
}

// Flush 等待已入队的事件全部处理完成。分发器未启动且已关闭时直接返回
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.pending > 0 && (d.started || !d.closed) {
		d.cond.Wait()
	}
}

// Close 处理完剩余事件后停止分发并释放协程池
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	started := d.started
	if !started && len(d.queue) > 0 {
		logger.Warn("Dispatcher closed before start, dropping %d events", len(d.queue))
		d.queue = nil
		d.pending = 0
	}
	d.cond.Broadcast()
	d.mu.Unlock()

	if started {
		<-d.done
	}
	d.cancel()
	d.pool.Release()
}

func (d *Dispatcher) loop() {
	defer close(d.done)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		batch := d.queue
		d.queue = nil
		processors := d.processors
		d.mu.Unlock()

		for _, evt := range batch {
			d.dispatch(processors, evt)

			d.mu.Lock()
			d.pending--
			d.cond.Broadcast()
			d.mu.Unlock()
		}
	}
}

func (d *Dispatcher) dispatch(processors []Processor, evt funding.Event) {
	var wg sync.WaitGroup
	for _, p := range processors {
		p := p
		wg.Add(1)
		err := d.pool.Submit(func() {
			defer wg.Done()
			if err := p.Process(d.ctx, evt); err != nil {
				logger.Error("Processor %s failed on %s #%d: %v", p.GetName(), evt.Kind, evt.Seq, err)
				metrics.RecordHandlerError(p.GetName())
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit %s #%d to processor %s: %v", evt.Kind, evt.Seq, p.GetName(), err)
			metrics.RecordHandlerError(p.GetName())
		}
	}
	wg.Wait()
	metrics.RecordEvent(evt.Kind)
}
